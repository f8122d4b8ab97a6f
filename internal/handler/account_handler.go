// Package handler はHTTP APIのハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storeapi/internal/auth"
	"github.com/hitoshi/storeapi/internal/middleware"
	"github.com/hitoshi/storeapi/internal/model"
)

// AccountServiceInterface はアカウントハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	// Register は新規アカウントを作成し、トークンとプロフィールを返す。
	Register(ctx context.Context, input auth.RegisterInput) (*auth.AuthResult, error)
	// Login は資格情報を検証し、トークンとプロフィールを返す。
	Login(ctx context.Context, email, password string) (*auth.AuthResult, error)
	// GetProfile は認証済みユーザーのプロフィールを返す。
	GetProfile(ctx context.Context, userID int64) (*model.UserProfile, error)
	// ForgotPassword はパスワード再設定トークンを発行しメールで送る。
	ForgotPassword(ctx context.Context, email string) error
	// ResetPassword は再設定トークンを消費してパスワードを更新する。
	ResetPassword(ctx context.Context, token, password string) error
}

// AccountHandler はアカウント管理のHTTPハンドラー。
type AccountHandler struct {
	service AccountServiceInterface
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{service: service}
}

// registerRequest はアカウント登録リクエストのボディ。
type registerRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Phone     string `json:"phone" validate:"required,max=20"`
	Address   string `json:"address" validate:"required,max=200"`
	Password  string `json:"password" validate:"required,min=8,max=100"`
}

// messageResponse は処理結果メッセージのみのレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// Register はアカウント登録を処理する。
// POST /account/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if err := validate.Struct(req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(validationFields(err)))
		return
	}

	result, err := h.service.Register(r.Context(), auth.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Password:  req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

// Login はログインを処理する。資格情報はクエリまたはフォームで受け取る。
// POST /account/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" || password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidCredentialsError())
		return
	}

	result, err := h.service.Login(r.Context(), email, password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

// Claims は認証済みトークンのクレーム一覧をそのまま返す。
// GET /account/claims
func (h *AccountHandler) Claims(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	writeJSONResponse(w, http.StatusOK, identity.Claims)
}

// Profile は認証済みユーザーのプロフィールを返す。
// GET /account/profile
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	profile, err := h.service.GetProfile(r.Context(), identity.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, profile)
}

// ForgotPassword はパスワード再設定トークンの発行を処理する。
// POST /account/forgotpassword/{email}
func (h *AccountHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewEmailNotFoundError())
		return
	}

	if err := h.service.ForgotPassword(r.Context(), email); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, messageResponse{
		Message: "パスワード再設定用のリンクをメールで送信しました。",
	})
}

// ResetPassword はトークンによるパスワード更新を処理する。
// トークンと新パスワードはクエリまたはフォームで受け取る。
// POST /account/resetpassword
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.FormValue("token")
	password := r.FormValue("password")

	if token == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidResetTokenError())
		return
	}
	if len(password) < 8 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(map[string]string{
			"password": "8文字以上で入力してください。",
		}))
		return
	}

	if err := h.service.ResetPassword(r.Context(), token, password); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, messageResponse{
		Message: "パスワードを更新しました。",
	})
}
