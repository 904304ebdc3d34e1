// Package httpapi exposes the user service over JSON/HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/validation"
)

// UserService is the subset of services.UserService the handlers use.
type UserService interface {
	Register(ctx context.Context, in validation.RegisterInput) (string, error)
	Login(ctx context.Context, in validation.LoginInput) (string, error)
	VerifyToken(ctx context.Context, token string) (*auth.UserClaims, error)
	RefreshToken(ctx context.Context, token string) (string, error)
	GetUser(ctx context.Context, id string) (*models.Account, error)
}

type Handlers struct {
	users  UserService
	logger logging.Logger
}

func NewHandlers(users UserService, logger logging.Logger) *Handlers {
	return &Handlers{users: users, logger: logger.With("module", "http_handlers")}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type validateRequest struct {
	Token string `json:"token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// register handles POST /api/auth/register
func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.users.Register(r.Context(), validation.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var verr *common.ValidationError
		switch {
		case errors.As(err, &verr):
			writeMessage(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, common.ErrConflict):
			writeMessage(w, http.StatusBadRequest, msgEmailExists)
		default:
			writeMessage(w, http.StatusInternalServerError, msgServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// login handles POST /api/auth/login
func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.users.Login(r.Context(), validation.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var verr *common.ValidationError
		switch {
		case errors.As(err, &verr):
			writeMessage(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, common.ErrInvalidCredentials):
			writeMessage(w, http.StatusBadRequest, msgInvalidCredentials)
		default:
			writeMessage(w, http.StatusInternalServerError, msgServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// validateToken handles POST /api/auth/validateToken
func (h *Handlers) validateToken(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, err := h.users.VerifyToken(r.Context(), req.Token)
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, msgTokenValid)
	case errors.Is(err, common.ErrMissingToken):
		writeMessage(w, http.StatusBadRequest, msgNoToken)
	case errors.Is(err, common.ErrTokenExpired):
		writeMessage(w, StatusTokenExpired, msgTokenExpired)
	default:
		writeMessage(w, http.StatusBadRequest, msgTokenInvalid)
	}
}

// refresh handles POST /api/auth/refresh
func (h *Handlers) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMissingToken):
			writeMessage(w, http.StatusBadRequest, msgRefreshRequired)
		case errors.Is(err, common.ErrTokenExpired):
			writeMessage(w, StatusTokenExpired, msgTokenExpired)
		case errors.Is(err, common.ErrTokenSignatureInvalid):
			writeMessage(w, http.StatusBadRequest, msgTokenInvalid)
		case errors.Is(err, common.ErrAccountNotFound):
			writeMessage(w, http.StatusBadRequest, msgRefreshInvalid)
		default:
			writeMessage(w, http.StatusInternalServerError, msgServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// getUser handles GET /api/users/{id} and GET /api/users/secure/{id}
func (h *Handlers) getUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	account, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrAccountNotFound) {
			writeMessage(w, http.StatusBadRequest, msgUserNotFound)
			return
		}
		writeMessage(w, http.StatusInternalServerError, msgServerError)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{ID: account.ID, Username: account.Username})
}
