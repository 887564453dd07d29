package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/application"
	"github.com/zegramtool/construction-gantt-chart/internal/calendar/holiday"
	"github.com/zegramtool/construction-gantt-chart/internal/config"
	httptransport "github.com/zegramtool/construction-gantt-chart/internal/http"
	"github.com/zegramtool/construction-gantt-chart/internal/persistence"
	"github.com/zegramtool/construction-gantt-chart/internal/persistence/sqlite"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	pool, err := sqlite.Open(sqlite.DefaultConfig(cfg.SQLiteDSN))
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := func() string { return randomHex(16) }
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	projectRepo := newProjectRepositoryAdapter(sqlite.NewProjectRepository(pool))
	taskRepo := newTaskRepositoryAdapter(sqlite.NewTaskRepository(pool))
	tradeRepo := newTradeRepositoryAdapter(sqlite.NewTradeRepository(pool))
	tradeCatalog := newTradeCatalogAdapter(sqlite.NewTradeRepository(pool))
	userRepo := newUserRepositoryAdapter(sqlite.NewUserRepository(pool))
	credentialStore := newCredentialStoreAdapter(sqlite.NewUserRepository(pool))
	sessionRepo := newSessionRepositoryAdapter(sqlite.NewSessionRepository(pool))

	projectService := application.NewProjectServiceWithLogger(projectRepo, idGenerator, now, logger)
	taskService := application.NewTaskServiceWithLogger(taskRepo, projectRepo, tradeCatalog, idGenerator, now, logger)
	chartService := application.NewChartServiceWithLogger(projectRepo, taskRepo, holiday.NewTable(), logger)
	tradeService := application.NewTradeService(tradeRepo, taskRepo, idGenerator, now)
	userService := application.NewUserService(userRepo, nil, nil, idGenerator, now)
	authService := application.NewAuthServiceWithLogger(credentialStore, sessionRepo, nil, idGenerator, tokenGenerator, now, cfg.SessionTTL, logger)

	authHandler := httptransport.NewAuthHandler(authService, logger)
	userHandler := httptransport.NewUserHandler(userService, logger)
	projectHandler := httptransport.NewProjectHandler(projectService, logger)
	taskHandler := httptransport.NewTaskHandler(taskService, logger)
	chartHandler := httptransport.NewChartHandler(chartService, logger)
	tradeHandler := httptransport.NewTradeHandler(tradeService, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     authHandler,
		Users:    userHandler,
		Projects: projectHandler,
		Tasks:    taskHandler,
		Charts:   chartHandler,
		Trades:   tradeHandler,
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicRoute(r) {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("gantt chart API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// publicRoute reports whether a request may bypass session validation.
// Login, refresh, and open registration are reachable without a token;
// refresh reads its token from the request itself.
func publicRoute(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/api/auth/login", "/api/auth/refresh":
		return true
	case "/api/users":
		return r.Method == http.MethodPost
	}
	return false
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

type projectRepositoryAdapter struct {
	repo persistence.ProjectRepository
}

func newProjectRepositoryAdapter(repo persistence.ProjectRepository) *projectRepositoryAdapter {
	return &projectRepositoryAdapter{repo: repo}
}

func (a *projectRepositoryAdapter) CreateProject(ctx context.Context, project application.Project) (application.Project, error) {
	if err := a.repo.CreateProject(ctx, toPersistenceProject(project)); err != nil {
		return application.Project{}, err
	}
	stored, err := a.repo.GetProject(ctx, project.ID)
	if err != nil {
		return application.Project{}, err
	}
	return toApplicationProject(stored), nil
}

func (a *projectRepositoryAdapter) GetProject(ctx context.Context, id string) (application.Project, error) {
	stored, err := a.repo.GetProject(ctx, id)
	if err != nil {
		return application.Project{}, err
	}
	return toApplicationProject(stored), nil
}

func (a *projectRepositoryAdapter) UpdateProject(ctx context.Context, project application.Project) (application.Project, error) {
	if err := a.repo.UpdateProject(ctx, toPersistenceProject(project)); err != nil {
		return application.Project{}, err
	}
	stored, err := a.repo.GetProject(ctx, project.ID)
	if err != nil {
		return application.Project{}, err
	}
	return toApplicationProject(stored), nil
}

func (a *projectRepositoryAdapter) DeleteProject(ctx context.Context, id string) error {
	return a.repo.DeleteProject(ctx, id)
}

func (a *projectRepositoryAdapter) ListProjectsByOwner(ctx context.Context, ownerID string) ([]application.Project, error) {
	models, err := a.repo.ListProjectsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	projects := make([]application.Project, 0, len(models))
	for _, model := range models {
		projects = append(projects, toApplicationProject(model))
	}
	return projects, nil
}

type taskRepositoryAdapter struct {
	repo persistence.TaskRepository
}

func newTaskRepositoryAdapter(repo persistence.TaskRepository) *taskRepositoryAdapter {
	return &taskRepositoryAdapter{repo: repo}
}

func (a *taskRepositoryAdapter) CreateTask(ctx context.Context, task application.Task) (application.Task, error) {
	stored, err := a.repo.CreateTask(ctx, toPersistenceTask(task))
	if err != nil {
		return application.Task{}, err
	}
	return toApplicationTask(stored), nil
}

func (a *taskRepositoryAdapter) GetTask(ctx context.Context, id string) (application.Task, error) {
	stored, err := a.repo.GetTask(ctx, id)
	if err != nil {
		return application.Task{}, err
	}
	return toApplicationTask(stored), nil
}

func (a *taskRepositoryAdapter) UpdateTask(ctx context.Context, task application.Task) (application.Task, error) {
	if err := a.repo.UpdateTask(ctx, toPersistenceTask(task)); err != nil {
		return application.Task{}, err
	}
	stored, err := a.repo.GetTask(ctx, task.ID)
	if err != nil {
		return application.Task{}, err
	}
	return toApplicationTask(stored), nil
}

func (a *taskRepositoryAdapter) DeleteTask(ctx context.Context, id string) error {
	return a.repo.DeleteTask(ctx, id)
}

func (a *taskRepositoryAdapter) ListTasks(ctx context.Context, projectID string) ([]application.Task, error) {
	models, err := a.repo.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	tasks := make([]application.Task, 0, len(models))
	for _, model := range models {
		tasks = append(tasks, toApplicationTask(model))
	}
	return tasks, nil
}

func (a *taskRepositoryAdapter) MoveTask(ctx context.Context, projectID, taskID string, position int) error {
	return a.repo.MoveTask(ctx, projectID, taskID, position)
}

func (a *taskRepositoryAdapter) CountTasksByTrade(ctx context.Context, tradeID string) (int, error) {
	return a.repo.CountTasksByTrade(ctx, tradeID)
}

type tradeRepositoryAdapter struct {
	repo persistence.TradeRepository
}

func newTradeRepositoryAdapter(repo persistence.TradeRepository) *tradeRepositoryAdapter {
	return &tradeRepositoryAdapter{repo: repo}
}

func (a *tradeRepositoryAdapter) CreateTrade(ctx context.Context, trade application.Trade) (application.Trade, error) {
	if err := a.repo.CreateTrade(ctx, toPersistenceTrade(trade)); err != nil {
		return application.Trade{}, err
	}
	stored, err := a.repo.GetTrade(ctx, trade.ID)
	if err != nil {
		return application.Trade{}, err
	}
	return toApplicationTrade(stored), nil
}

func (a *tradeRepositoryAdapter) GetTrade(ctx context.Context, id string) (application.Trade, error) {
	stored, err := a.repo.GetTrade(ctx, id)
	if err != nil {
		return application.Trade{}, err
	}
	return toApplicationTrade(stored), nil
}

func (a *tradeRepositoryAdapter) UpdateTrade(ctx context.Context, trade application.Trade) (application.Trade, error) {
	if err := a.repo.UpdateTrade(ctx, toPersistenceTrade(trade)); err != nil {
		return application.Trade{}, err
	}
	stored, err := a.repo.GetTrade(ctx, trade.ID)
	if err != nil {
		return application.Trade{}, err
	}
	return toApplicationTrade(stored), nil
}

func (a *tradeRepositoryAdapter) DeleteTrade(ctx context.Context, id string) error {
	return a.repo.DeleteTrade(ctx, id)
}

func (a *tradeRepositoryAdapter) ListTrades(ctx context.Context) ([]application.Trade, error) {
	models, err := a.repo.ListTrades(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	trades := make([]application.Trade, 0, len(models))
	for _, model := range models {
		trades = append(trades, toApplicationTrade(model))
	}
	return trades, nil
}

type tradeCatalogAdapter struct {
	repo persistence.TradeRepository
}

func newTradeCatalogAdapter(repo persistence.TradeRepository) *tradeCatalogAdapter {
	return &tradeCatalogAdapter{repo: repo}
}

func (a *tradeCatalogAdapter) TradeExists(ctx context.Context, id string) (bool, error) {
	if _, err := a.repo.GetTrade(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, creds application.UserCredentials) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(creds.User, creds.PasswordHash, creds.Disabled)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, creds.User.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUserCredentials(ctx context.Context, id string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
		Disabled:     stored.Disabled,
	}, nil
}

func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, user application.User) (application.User, error) {
	current, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(user, current.PasswordHash, current.Disabled)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) UpdatePassword(ctx context.Context, userID, passwordHash string, changedAt time.Time) error {
	current, err := a.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	current.PasswordHash = passwordHash
	current.UpdatedAt = changedAt
	return a.repo.UpdateUser(ctx, current)
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
		Disabled:     stored.Disabled,
	}, nil
}

func (a *credentialStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) UpdateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.UpdateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

func toApplicationProject(model persistence.Project) application.Project {
	return application.Project{
		ID:          model.ID,
		OwnerID:     model.OwnerID,
		Name:        model.Name,
		AnchorDate:  model.AnchorDate,
		ActiveScale: model.ActiveScale,
		HourWindow:  model.HourWindow,
		DayWindow:   model.DayWindow,
		Workdays:    model.Workdays.Clone(),
		Provisional: model.Provisional,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceProject(project application.Project) persistence.Project {
	return persistence.Project{
		ID:          project.ID,
		OwnerID:     project.OwnerID,
		Name:        project.Name,
		AnchorDate:  project.AnchorDate,
		ActiveScale: project.ActiveScale,
		HourWindow:  project.HourWindow,
		DayWindow:   project.DayWindow,
		Workdays:    project.Workdays.Clone(),
		Provisional: project.Provisional,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

func toApplicationTask(model persistence.Task) application.Task {
	return application.Task{
		ID:           model.ID,
		ProjectID:    model.ProjectID,
		Name:         model.Name,
		Assignee:     model.Assignee,
		TradeID:      cloneString(model.TradeID),
		Color:        cloneString(model.Color),
		DisplayOrder: model.DisplayOrder,
		Schedule:     model.Schedule,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceTask(task application.Task) persistence.Task {
	return persistence.Task{
		ID:           task.ID,
		ProjectID:    task.ProjectID,
		Name:         task.Name,
		Assignee:     task.Assignee,
		TradeID:      cloneString(task.TradeID),
		Color:        cloneString(task.Color),
		DisplayOrder: task.DisplayOrder,
		Schedule:     task.Schedule,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
}

func toApplicationTrade(model persistence.Trade) application.Trade {
	return application.Trade{
		ID:           model.ID,
		Name:         model.Name,
		Color:        model.Color,
		DisplayOrder: model.DisplayOrder,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceTrade(trade application.Trade) persistence.Trade {
	return persistence.Trade{
		ID:           trade.ID,
		Name:         trade.Name,
		Color:        trade.Color,
		DisplayOrder: trade.DisplayOrder,
		CreatedAt:    trade.CreatedAt,
		UpdatedAt:    trade.UpdatedAt,
	}
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:          model.ID,
		Email:       model.Email,
		DisplayName: model.DisplayName,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceUser(user application.User, passwordHash string, disabled bool) persistence.User {
	return persistence.User{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		PasswordHash: passwordHash,
		Disabled:     disabled,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		UserID:    model.UserID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
