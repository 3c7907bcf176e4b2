package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"user-management-service/internal/http/response"
	"user-management-service/internal/observability"
	"user-management-service/internal/service"
)

type AuthHandler struct {
	userSvc service.UserServiceInterface
	tokens  service.TokenIssuer
}

func NewAuthHandler(userSvc service.UserServiceInterface, tokens service.TokenIssuer) *AuthHandler {
	return &AuthHandler{userSvc: userSvc, tokens: tokens}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "signup", status, time.Since(start))
	}()

	var input service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		status = "failure"
		observability.RecordSignup(r.Context(), "failure")
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	u, err := h.userSvc.Register(r.Context(), input)
	if err != nil {
		status = "failure"
		observability.Audit(r, "users.signup.failed", "nickname", input.Nickname)
		observability.RecordSignup(r.Context(), "failure")
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "users.signup.success", "user_id", u.ID)
	observability.RecordSignup(r.Context(), "success")
	response.JSON(w, r, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", status, time.Since(start))
	}()

	var body struct {
		Nickname string `json:"nickname"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		observability.RecordLogin(r.Context(), "failure")
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	u, err := h.userSvc.Authenticate(r.Context(), body.Nickname, body.Password)
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.login.failed", "nickname", body.Nickname)
		observability.RecordLogin(r.Context(), "failure")
		writeServiceError(w, r, err)
		return
	}
	token, err := h.tokens.Issue(u)
	if err != nil {
		status = "failure"
		observability.RecordLogin(r.Context(), "failure")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to issue token", nil)
		return
	}
	observability.Audit(r, "auth.login.success", "user_id", u.ID)
	observability.RecordLogin(r.Context(), "success")
	response.JSON(w, r, http.StatusOK, token)
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "verify_email", status, time.Since(start))
	}()

	var body struct {
		UserID string `json:"user_id"`
		Token  string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		observability.RecordEmailVerification(r.Context(), "failure")
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	id, err := uuid.Parse(body.UserID)
	if err != nil {
		status = "failure"
		observability.RecordEmailVerification(r.Context(), "failure")
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid user id", nil)
		return
	}
	u, err := h.userSvc.VerifyEmail(r.Context(), id, body.Token)
	if err != nil {
		status = "failure"
		observability.Audit(r, "users.email_verification.failed", "user_id", id)
		observability.RecordEmailVerification(r.Context(), "failure")
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "users.email_verification.success", "user_id", u.ID)
	observability.RecordEmailVerification(r.Context(), "success")
	response.JSON(w, r, http.StatusOK, u)
}
