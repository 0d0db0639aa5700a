package auth

import (
	"errors"
	"net/http"

	"blog-service/internal/shared/httpx"
	"blog-service/internal/shared/jwt"
	"blog-service/internal/shared/validate"

	"github.com/sirupsen/logrus"
)

const msgWrongCredentials = "Wrong username or password"

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	GrantType    string `json:"grant_type" validate:"required,eq=refresh_token"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenResponse struct {
	Username     string   `json:"username"`
	Roles        []string `json:"roles"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
}

type Handler struct {
	auth   *Authenticator
	tokens *jwt.Manager
	log    logrus.FieldLogger
}

func NewHandler(a *Authenticator, tokens *jwt.Manager, log logrus.FieldLogger) *Handler {
	return &Handler{auth: a, tokens: tokens, log: log}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	body, err := httpx.Decode[LoginRequest](r)
	if err != nil {
		return err
	}
	if err = validate.Struct(body); err != nil {
		return err
	}
	if err = h.auth.Check(body.Username, body.Password); err != nil {
		h.log.WithField("username", body.Username).Error(msgWrongCredentials)
		return httpx.Unauthorized(msgWrongCredentials)
	}
	return h.issue(w, body.Username)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) error {
	body, err := httpx.Decode[RefreshRequest](r)
	if err != nil {
		return err
	}
	if err = validate.Struct(body); err != nil {
		return err
	}
	sub, err := h.tokens.ParseRefresh(body.RefreshToken)
	if err != nil {
		msg := "Invalid refresh token"
		if errors.Is(err, jwt.ErrWrongType) {
			msg = "Token is not a refresh token"
		}
		h.log.WithError(err).Error(msg)
		return httpx.Unauthorized(msg)
	}
	return h.issue(w, sub)
}

func (h *Handler) Whoami(w http.ResponseWriter, r *http.Request) error {
	sub, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]any{"username": sub, "roles": h.auth.Roles(sub)}, http.StatusOK)
	return nil
}

func (h *Handler) issue(w http.ResponseWriter, sub string) error {
	access, err := h.tokens.MakeAccess(sub)
	if err != nil {
		return err
	}
	refresh, err := h.tokens.MakeRefresh(sub)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, TokenResponse{
		Username:     sub,
		Roles:        h.auth.Roles(sub),
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.tokens.AccessTTL().Seconds()),
	}, http.StatusOK)
	return nil
}
