package http

import (
	"context"

	"github.com/zegramtool/construction-gantt-chart/internal/application"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	projectIDContextKey contextKey = "project_id"
	taskIDContextKey    contextKey = "task_id"
	tradeIDContextKey   contextKey = "trade_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithProjectID injects the project identifier resolved from the request path.
func ContextWithProjectID(ctx context.Context, projectID string) context.Context {
	return context.WithValue(ctx, projectIDContextKey, projectID)
}

// ProjectIDFromContext extracts a project identifier previously associated with the context.
func ProjectIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(projectIDContextKey).(string)
	return id, ok
}

// ContextWithTaskID injects the task identifier resolved from the request path.
func ContextWithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, taskIDContextKey, taskID)
}

// TaskIDFromContext extracts a task identifier previously associated with the context.
func TaskIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(taskIDContextKey).(string)
	return id, ok
}

// ContextWithTradeID injects the trade identifier resolved from the request path.
func ContextWithTradeID(ctx context.Context, tradeID string) context.Context {
	return context.WithValue(ctx, tradeIDContextKey, tradeID)
}

// TradeIDFromContext extracts a trade identifier previously associated with the context.
func TradeIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(tradeIDContextKey).(string)
	return id, ok
}
