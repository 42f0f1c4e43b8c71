package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/diewo77/brushwork/auth"
	"github.com/diewo77/brushwork/httpx"
	"github.com/diewo77/brushwork/internal/models"
	"github.com/diewo77/brushwork/internal/store"
	"github.com/diewo77/brushwork/validation"
)

type AuthHandler struct {
	store *store.Store
	log   *zap.Logger
}

func NewAuthHandler(st *store.Store, log *zap.Logger) *AuthHandler {
	return &AuthHandler{store: st, log: orNop(log)}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decode(w, r, &in) {
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	v := validation.Violations{}
	validation.Required("email", in.Email, v)
	if _, ok := v["email"]; !ok {
		validation.Email("email", in.Email, v)
	}
	validation.MinLength("password", in.Password, 8, v)
	if !v.Empty() {
		httpx.Fail(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}
	_, err := h.store.UserByEmail(r.Context(), in.Email)
	switch {
	case err == nil:
		httpx.Fail(w, r, http.StatusConflict, "email_taken", nil)
		return
	case !errors.Is(err, store.ErrNotFound):
		failWith(w, r, h.log, err, "")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		failWith(w, r, h.log, err, "")
		return
	}
	user := &models.User{Email: in.Email, Name: strings.TrimSpace(in.Name), Password: string(hash)}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		failWith(w, r, h.log, err, "")
		return
	}
	h.log.Info("user signed up", zap.Uint("user_id", user.ID))
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decode(w, r, &in) {
		return
	}
	user, err := h.store.UserByEmail(r.Context(), in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Fail(w, r, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		failWith(w, r, h.log, err, "")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		httpx.Fail(w, r, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}
