package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux; no third-party routing
// dependency is needed for this surface.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterVoiceRoutes registers the endpoints consumed by the voice platform.
// Mutating routes require the platform's bearer token.
func (r *Router) RegisterVoiceRoutes(v *VoiceHandler, auth *AuthMiddleware) {
	r.Handle("/voice/api/v1/appointments/search", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		v.Search(w, req)
	})

	r.Handle("/voice/api/v1/appointments/confirm", auth.Require(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		v.Confirm(w, req)
	}))

	r.Handle("/voice/api/v1/appointments/reschedule", auth.Require(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		v.Reschedule(w, req)
	}))

	r.Handle("/voice/api/v1/dates/current", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		v.CurrentDateInfo(w, req)
	})

	r.Handle("/voice/api/v1/dates/validate", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		v.ValidateDate(w, req)
	})
}

// RegisterAdminRoutes registers the operator-facing admin endpoints.
func (r *Router) RegisterAdminRoutes(e *ExportHandler, auth *AuthMiddleware) {
	r.Handle("/admin/api/v1/appointments/export", auth.Require(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		e.ExportDay(w, req)
	}))
}

// RegisterHealthRoute exposes liveness for the process supervisor.
func (r *Router) RegisterHealthRoute() {
	r.Handle("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
