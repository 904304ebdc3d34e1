package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// NewRouter builds the HTTP routes:
//
//	POST /api/auth/register
//	POST /api/auth/login
//	POST /api/auth/validateToken
//	POST /api/auth/refresh
//	GET  /api/users/{id}
//	GET  /api/users/secure/{id}   (bearer token required)
func NewRouter(users UserService, logger logging.Logger) *mux.Router {
	h := NewHandlers(users, logger)
	l := logger.With("module", "http")

	r := mux.NewRouter()
	r.Use(Recoverer(l), RequestLogger(l), AllowAnyOrigin)

	a := r.PathPrefix("/api/auth").Subrouter()
	a.HandleFunc("/register", h.register).Methods(http.MethodPost)
	a.HandleFunc("/login", h.login).Methods(http.MethodPost)
	a.HandleFunc("/validateToken", h.validateToken).Methods(http.MethodPost)
	a.HandleFunc("/refresh", h.refresh).Methods(http.MethodPost)

	u := r.PathPrefix("/api/users").Subrouter()

	secure := u.PathPrefix("/secure").Subrouter()
	secure.Use(RequireBearer(users))
	secure.HandleFunc("/{id}", h.getUser).Methods(http.MethodGet)

	u.HandleFunc("/{id}", h.getUser).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "not_found")
	})

	return r
}
