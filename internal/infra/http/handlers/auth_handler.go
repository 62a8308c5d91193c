package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/buyer-leads/internal/entity"
	"github.com/xavierca1/buyer-leads/internal/infra/auth"
)

type Authenticator interface {
	Authenticate(email, password string) (entity.Actor, error)
}

type SessionIssuer interface {
	Issue(actor entity.Actor) (string, time.Time, error)
}

type AuthHandler struct {
	Users        Authenticator
	Tokens       SessionIssuer
	SecureCookie bool
	Logger       logrus.FieldLogger
}

func NewAuthHandler(users Authenticator, tokens SessionIssuer, secureCookie bool, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, SecureCookie: secureCookie, Logger: logger}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User entity.Actor `json:"user"`
}

// Login handles POST /api/login and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	actor, err := h.Users.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, expires, err := h.Tokens.Issue(actor)
	if err != nil {
		h.Logger.WithError(err).Error("could not issue session")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.Logger.WithField("actor_id", actor.ID).Info("user logged in")

	writeJSON(w, http.StatusOK, LoginResponse{User: actor})
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
