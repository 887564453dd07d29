package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Projects   *ProjectHandler
	Tasks      *TaskHandler
	Charts     *ChartHandler
	Trades     *TradeHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	})

	if cfg.Auth != nil {
		mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.DeleteCurrentSession(w, r)
		})
		mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.RefreshSession(w, r)
		})
	}

	if cfg.Users != nil {
		mux.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Users.Register(w, r)
		})
		mux.HandleFunc("/api/users/me", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Users.Me(w, r)
			case http.MethodPatch:
				cfg.Users.UpdateMe(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPatch)
			}
		})
		mux.HandleFunc("/api/users/me/password", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Users.ChangePassword(w, r)
		})
	}

	if cfg.Projects != nil || cfg.Tasks != nil || cfg.Charts != nil {
		mux.HandleFunc("/api/projects", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Projects.List(w, r)
			case http.MethodPost:
				cfg.Projects.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/projects/", projectSubtree(cfg))
	}

	if cfg.Trades != nil {
		mux.HandleFunc("/api/trades", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Trades.List(w, r)
			case http.MethodPost:
				cfg.Trades.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/trades/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/trades/"), "/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithTradeID(r.Context(), id)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodPatch:
				cfg.Trades.Update(w, r)
			case http.MethodDelete:
				cfg.Trades.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPatch, http.MethodDelete)
			}
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

// projectSubtree routes everything below /api/projects/: the project
// document itself, the chart and working-day queries, and the task rows
// with their order, schedule, and drag sub-resources.
func projectSubtree(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/projects/"), "/")
		if rest == "" {
			http.NotFound(w, r)
			return
		}

		segments := strings.Split(rest, "/")
		r = r.WithContext(ContextWithProjectID(r.Context(), segments[0]))

		switch {
		case len(segments) == 1:
			switch r.Method {
			case http.MethodGet:
				cfg.Projects.Get(w, r)
			case http.MethodPatch:
				cfg.Projects.Update(w, r)
			case http.MethodDelete:
				cfg.Projects.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPatch, http.MethodDelete)
			}
		case len(segments) == 2 && segments[1] == "chart":
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Charts.Render(w, r)
		case len(segments) == 2 && segments[1] == "workdays":
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Charts.CountWorkdays(w, r)
		case len(segments) == 3 && segments[1] == "workdays" && segments[2] == "target":
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Charts.WorkdayTarget(w, r)
		case len(segments) == 2 && segments[1] == "holidays":
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Charts.ListHolidays(w, r)
		case len(segments) == 2 && segments[1] == "tasks":
			switch r.Method {
			case http.MethodGet:
				cfg.Tasks.List(w, r)
			case http.MethodPost:
				cfg.Tasks.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		case len(segments) == 3 && segments[1] == "tasks":
			r = r.WithContext(ContextWithTaskID(r.Context(), segments[2]))
			switch r.Method {
			case http.MethodGet:
				cfg.Tasks.Get(w, r)
			case http.MethodPatch:
				cfg.Tasks.Update(w, r)
			case http.MethodDelete:
				cfg.Tasks.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPatch, http.MethodDelete)
			}
		case len(segments) == 4 && segments[1] == "tasks":
			r = r.WithContext(ContextWithTaskID(r.Context(), segments[2]))
			switch segments[3] {
			case "order":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Tasks.Reorder(w, r)
			case "schedule":
				if r.Method != http.MethodPatch {
					methodNotAllowed(w, http.MethodPatch)
					return
				}
				cfg.Tasks.UpdateSchedule(w, r)
			case "drag":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Tasks.Drag(w, r)
			default:
				http.NotFound(w, r)
			}
		default:
			http.NotFound(w, r)
		}
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
