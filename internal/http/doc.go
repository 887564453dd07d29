// Package http provides HTTP handlers and middleware for the gantt API.
//
// The router exposes the following endpoints under /api:
//   - POST /api/auth/login: issues a session token. Body: {"email","password"}.
//     Response: {"token","expires_at"} with the token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - POST /api/auth/refresh: rotates the current session token and extends its
//     expiry. POST /api/auth/logout revokes the session, returns 204 No Content
//     and clears the cookie.
//   - POST /api/users: public account registration. GET/PATCH /api/users/me and
//     POST /api/users/me/password manage the authenticated account using the
//     `userDTO` payload defined in user_handler.go.
//   - GET /api/projects, POST /api/projects, GET/PATCH/DELETE
//     /api/projects/{id}: project management endpoints exchanging the
//     `projectDTO` payload defined in project_handler.go. Every project is
//     private to its owner.
//   - GET /api/projects/{id}/chart, /workdays, /workdays/target, /holidays:
//     read-only chart assembly and working-day queries served by
//     chart_handler.go.
//   - GET/POST /api/projects/{id}/tasks plus GET/PATCH/DELETE on
//     /tasks/{taskID} and the PUT /order, PATCH /schedule, POST /drag
//     sub-resources: task row management defined in task_handler.go. Task
//     schedules serialize as one optional {"start","end"} interval per scale.
//   - GET/POST /api/trades, PATCH/DELETE /api/trades/{id}: trade master
//     endpoints exchanging the `tradeDTO` payload defined in trade_handler.go.
//
// GET /healthz responds without authentication. Request/response DTOs live
// alongside their respective handlers so tests and documentation share the
// same ground truth.
package http
