package httpapi

import (
	"encoding/json"
	"net/http"
)

// StatusTokenExpired is the non-standard status answered for expired tokens.
const StatusTokenExpired = 498

const maxBodyBytes = 1 << 20

const (
	msgEmailExists        = "email_already_exists"
	msgInvalidCredentials = "error_invalid_credentials"
	msgServerError        = "server_error"
	msgInvalidBody        = "error_invalid_body"
	msgNoToken            = "No token, authorization denied"
	msgTokenInvalid       = "Token is not valid"
	msgTokenExpired       = "Token is expired"
	msgTokenValid         = "Token is valid"
	msgRefreshRequired    = "Refresh Token is required"
	msgRefreshInvalid     = "Invalid Refresh Token"
	msgUserNotFound       = "User does not exist"
)

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type userResponse struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}
