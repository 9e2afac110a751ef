package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/qnetdash/quorum-dashboard-be/internal/auth"
	"github.com/qnetdash/quorum-dashboard-be/internal/config"
	"github.com/qnetdash/quorum-dashboard-be/internal/http/respond"
	"github.com/qnetdash/quorum-dashboard-be/internal/middleware"
	"github.com/qnetdash/quorum-dashboard-be/internal/models"
	"github.com/qnetdash/quorum-dashboard-be/internal/models/dto"
	"github.com/qnetdash/quorum-dashboard-be/internal/storage"
)

// authErrorText deliberately does not distinguish an unknown email from a
// wrong password.
const authErrorText = "user does not exist or wrong user-password pair provided"

// AuthHandler owns login/logout, the current-user lookup, self-registration,
// and password change.
type AuthHandler struct {
	store  storage.Store
	hasher *auth.Hasher
	tokens *auth.TokenManager
	cfg    *config.Config
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.Store, hasher *auth.Hasher, tokens *auth.TokenManager, cfg *config.Config) *AuthHandler {
	return &AuthHandler{store: store, hasher: hasher, tokens: tokens, cfg: cfg}
}

// Register attaches auth routes to the mux. Session-bound routes go through
// the cookie-validating middleware.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.Handle("GET /api/auth/user", h.authenticated(h.handleCurrentUser))
	mux.HandleFunc("POST /api/users", h.handleCreateUser)
	mux.Handle("PATCH /api/users/me", h.authenticated(h.handleEditUser))
}

func (h *AuthHandler) authenticated(next http.HandlerFunc) http.Handler {
	return middleware.Auth(h.tokens, h.cfg.AuthCookieName, next)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user, err := h.store.FindUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, authErrorText)
			return
		}
		log.Printf("login: fetch user: %v", err)
		respond.ServerError(w)
		return
	}

	ok, err := h.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		// A broken stored hash must read as "not authenticated" without
		// revealing which stage failed.
		log.Printf("login: verify password for user %d: %v", user.ID, err)
		respond.Error(w, http.StatusUnauthorized, authErrorText)
		return
	}
	if !ok {
		respond.Error(w, http.StatusUnauthorized, authErrorText)
		return
	}

	token, expiry, err := h.tokens.Issue(user)
	if err != nil {
		log.Printf("login: issue token for user %d: %v", user.ID, err)
		respond.ServerError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.AuthCookieName,
		Value:    token,
		Domain:   h.cfg.AuthCookieDomain,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.AuthCookieSecure,
		Expires:  expiry,
	})
	respond.JSON(w, http.StatusOK, dto.LoginResponse{User: publicProjection(user)})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.AuthCookieName,
		Value:    "",
		Domain:   h.cfg.AuthCookieDomain,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.AuthCookieSecure,
		MaxAge:   -1,
	})
	respond.Message(w, http.StatusOK, "logout successful")
}

func (h *AuthHandler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.ServerError(w)
		return
	}
	user, err := h.store.FindUserByID(r.Context(), userID)
	if err != nil {
		// The id came from a verified token; a missing row means the session
		// and the store disagree, which is a server-side problem.
		log.Printf("current user: fetch user %d: %v", userID, err)
		respond.ServerError(w)
		return
	}
	respond.JSON(w, http.StatusOK, dto.CurrentUserResponse{ID: user.ID, Email: user.Email})
}

func (h *AuthHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "wrong params, expected: {username, password}")
		return
	}

	_, err := h.store.FindUserByUsername(r.Context(), req.Username)
	switch {
	case err == nil:
		respond.Error(w, http.StatusConflict, "user already exists")
		return
	case !errors.Is(err, storage.ErrNotFound):
		log.Printf("create user: check existing: %v", err)
		respond.ServerError(w)
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		log.Printf("create user: hash password: %v", err)
		respond.ServerError(w)
		return
	}
	if _, err := h.store.CreateUser(r.Context(), models.User{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
	}); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusConflict, "user already exists")
			return
		}
		log.Printf("create user: %v", err)
		respond.ServerError(w)
		return
	}
	respond.Message(w, http.StatusOK, "user created")
}

func (h *AuthHandler) handleEditUser(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var req dto.EditUserRequest
	if err := dec.Decode(&req); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			respond.Error(w, http.StatusBadRequest, "wrong params, possible options: [newPassword, oldPassword]")
			return
		}
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		respond.Error(w, http.StatusBadRequest, "expected both params: [oldPassword, newPassword]")
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.ServerError(w)
		return
	}
	user, err := h.store.FindUserByID(r.Context(), userID)
	if err != nil {
		log.Printf("edit user: fetch user %d: %v", userID, err)
		respond.ServerError(w)
		return
	}

	matches, err := h.hasher.Verify(req.OldPassword, user.PasswordHash)
	if err != nil {
		log.Printf("edit user: verify old password for user %d: %v", userID, err)
		respond.ServerError(w)
		return
	}
	if !matches {
		respond.Error(w, http.StatusUnauthorized, "old password is incorrect")
		return
	}

	hash, err := h.hasher.Hash(req.NewPassword)
	if err != nil {
		log.Printf("edit user: hash new password: %v", err)
		respond.ServerError(w)
		return
	}
	if err := h.store.UpdateUserPassword(r.Context(), userID, hash); err != nil {
		log.Printf("edit user: update password for user %d: %v", userID, err)
		respond.ServerError(w)
		return
	}
	respond.Message(w, http.StatusOK, "password changed")
}

func publicProjection(user models.User) dto.UserProjection {
	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}
	return dto.UserProjection{ID: user.ID, Email: user.Email, Roles: roles}
}
