package handler

import (
	"net/http"

	"notes-server/internal/middleware"
	"notes-server/pkg/response"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// APIPrefix is the versioned mount point. Every route is also served without it.
const APIPrefix = "/api/v1"

type RouterOptions struct {
	Log      *zap.Logger
	Resolver middleware.Resolver
	// Limiter is optional; nil disables rate limiting.
	Limiter *middleware.RateLimiter

	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

func NewRouter(auth *AuthHandler, notes *NoteHandler, opts RouterOptions) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RecoverMiddleware(opts.Log))
	r.Use(middleware.LoggerMiddleware(opts.Log))
	r.Use(middleware.CORSMiddleware(opts.AllowedOrigins, opts.AllowedMethods, opts.AllowedHeaders))
	if opts.Limiter != nil {
		r.Use(middleware.RateLimitMiddleware(opts.Limiter))
	}

	r.HandleFunc("/", rootHandler).Methods("GET")
	r.HandleFunc("/health", healthHandler).Methods("GET")

	requireAuth := middleware.AuthMiddleware(opts.Resolver, opts.Log)
	mountAPI(r, auth, notes, requireAuth)
	mountAPI(r.PathPrefix(APIPrefix).Subrouter(), auth, notes, requireAuth)

	return r
}

func mountAPI(api *mux.Router, auth *AuthHandler, notes *NoteHandler, requireAuth mux.MiddlewareFunc) {
	api.HandleFunc("/auth/signup", auth.Signup).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", auth.Login).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(requireAuth)

	protected.HandleFunc("/auth/me", auth.Me).Methods("GET", "OPTIONS")

	protected.HandleFunc("/notes", notes.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes", notes.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/notes/{id}", notes.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notes/{id}", notes.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/notes/{id}", notes.Delete).Methods("DELETE", "OPTIONS")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{
		"status":  "healthy",
		"service": "notes-server",
	})
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"message": "Notes API is running!"})
}
