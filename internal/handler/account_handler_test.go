package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storeapi/internal/auth"
	"github.com/hitoshi/storeapi/internal/middleware"
	"github.com/hitoshi/storeapi/internal/model"
)

// --- モック定義 ---

type mockAccountService struct {
	registerFn       func(ctx context.Context, input auth.RegisterInput) (*auth.AuthResult, error)
	loginFn          func(ctx context.Context, email, password string) (*auth.AuthResult, error)
	getProfileFn     func(ctx context.Context, userID int64) (*model.UserProfile, error)
	forgotPasswordFn func(ctx context.Context, email string) error
	resetPasswordFn  func(ctx context.Context, token, password string) error
}

func (m *mockAccountService) Register(ctx context.Context, input auth.RegisterInput) (*auth.AuthResult, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, input)
	}
	return &auth.AuthResult{Token: "issued-token"}, nil
}

func (m *mockAccountService) Login(ctx context.Context, email, password string) (*auth.AuthResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return &auth.AuthResult{Token: "issued-token"}, nil
}

func (m *mockAccountService) GetProfile(ctx context.Context, userID int64) (*model.UserProfile, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, userID)
	}
	return &model.UserProfile{ID: userID}, nil
}

func (m *mockAccountService) ForgotPassword(ctx context.Context, email string) error {
	if m.forgotPasswordFn != nil {
		return m.forgotPasswordFn(ctx, email)
	}
	return nil
}

func (m *mockAccountService) ResetPassword(ctx context.Context, token, password string) error {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(ctx, token, password)
	}
	return nil
}

// --- テスト ---

func TestAccountHandler_Register_Success(t *testing.T) {
	var gotInput auth.RegisterInput
	svc := &mockAccountService{
		registerFn: func(ctx context.Context, input auth.RegisterInput) (*auth.AuthResult, error) {
			gotInput = input
			return &auth.AuthResult{
				Token: "issued-token",
				User:  model.UserProfile{ID: 1, Email: input.Email, Role: model.RoleClient},
			}, nil
		},
	}
	h := NewAccountHandler(svc)

	body := `{
		"firstName": "Taro",
		"lastName": "Yamada",
		"email": "taro@example.com",
		"phone": "090-0000-0000",
		"address": "Tokyo",
		"password": "password123"
	}`
	req := httptest.NewRequest(http.MethodPost, "/account/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	if gotInput.Email != "taro@example.com" {
		t.Errorf("input email = %q, want %q", gotInput.Email, "taro@example.com")
	}

	var resp auth.AuthResult
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token != "issued-token" {
		t.Errorf("token = %q, want %q", resp.Token, "issued-token")
	}
}

func TestAccountHandler_Register_ValidationFailed(t *testing.T) {
	h := NewAccountHandler(&mockAccountService{})

	// password が短く email の形式も不正
	body := `{
		"firstName": "Taro",
		"lastName": "Yamada",
		"email": "not-an-email",
		"phone": "090-0000-0000",
		"address": "Tokyo",
		"password": "short"
	}`
	req := httptest.NewRequest(http.MethodPost, "/account/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp apiErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeValidationFailed {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeValidationFailed)
	}

	// フィールド別エラーにjsonタグ名が使われること
	if _, ok := resp.Fields["email"]; !ok {
		t.Errorf("fields = %v, should contain email", resp.Fields)
	}
	if _, ok := resp.Fields["password"]; !ok {
		t.Errorf("fields = %v, should contain password", resp.Fields)
	}
}

func TestAccountHandler_Register_EmailTaken(t *testing.T) {
	svc := &mockAccountService{
		registerFn: func(ctx context.Context, input auth.RegisterInput) (*auth.AuthResult, error) {
			return nil, model.NewEmailTakenError()
		},
	}
	h := NewAccountHandler(svc)

	body := `{
		"firstName": "Taro",
		"lastName": "Yamada",
		"email": "taken@example.com",
		"phone": "090-0000-0000",
		"address": "Tokyo",
		"password": "password123"
	}`
	req := httptest.NewRequest(http.MethodPost, "/account/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAccountHandler_Login_Success(t *testing.T) {
	var gotEmail, gotPassword string
	svc := &mockAccountService{
		loginFn: func(ctx context.Context, email, password string) (*auth.AuthResult, error) {
			gotEmail, gotPassword = email, password
			return &auth.AuthResult{Token: "issued-token"}, nil
		},
	}
	h := NewAccountHandler(svc)

	// 資格情報はクエリパラメータでも受け付ける
	req := httptest.NewRequest(http.MethodPost, "/account/login?email=taro%40example.com&password=password123", nil)
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotEmail != "taro@example.com" || gotPassword != "password123" {
		t.Errorf("credentials = (%q, %q), want parsed from query", gotEmail, gotPassword)
	}
}

func TestAccountHandler_Login_MissingCredentials(t *testing.T) {
	h := NewAccountHandler(&mockAccountService{})

	req := httptest.NewRequest(http.MethodPost, "/account/login", nil)
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAccountHandler_Login_InvalidCredentials(t *testing.T) {
	svc := &mockAccountService{
		loginFn: func(ctx context.Context, email, password string) (*auth.AuthResult, error) {
			return nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAccountHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/account/login?email=taro%40example.com&password=wrong", nil)
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp apiErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeInvalidCredentials)
	}
}

func TestAccountHandler_Claims_ReturnsClaimsVerbatim(t *testing.T) {
	h := NewAccountHandler(&mockAccountService{})

	req := httptest.NewRequest(http.MethodGet, "/account/claims", nil)
	identity := &auth.Identity{
		UserID: 9,
		Role:   model.RoleClient,
		Claims: map[string]string{"id": "9", "role": "Client"},
	}
	req = req.WithContext(middleware.ContextWithIdentity(req.Context(), identity))
	w := httptest.NewRecorder()

	h.Claims(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var claims map[string]string
	if err := json.NewDecoder(w.Body).Decode(&claims); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if claims["id"] != "9" || claims["role"] != "Client" {
		t.Errorf("claims = %v, want id and role from token", claims)
	}
}

func TestAccountHandler_Claims_WithoutIdentity(t *testing.T) {
	h := NewAccountHandler(&mockAccountService{})

	req := httptest.NewRequest(http.MethodGet, "/account/claims", nil)
	w := httptest.NewRecorder()

	h.Claims(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAccountHandler_Profile_UsesIdentityUserID(t *testing.T) {
	var gotUserID int64
	svc := &mockAccountService{
		getProfileFn: func(ctx context.Context, userID int64) (*model.UserProfile, error) {
			gotUserID = userID
			return &model.UserProfile{ID: userID, Email: "taro@example.com"}, nil
		},
	}
	h := NewAccountHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/account/profile", nil)
	req = req.WithContext(middleware.ContextWithIdentity(req.Context(), &auth.Identity{UserID: 9}))
	w := httptest.NewRecorder()

	h.Profile(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotUserID != 9 {
		t.Errorf("userID = %d, want 9", gotUserID)
	}
}

func TestAccountHandler_ForgotPassword_UnknownEmail(t *testing.T) {
	svc := &mockAccountService{
		forgotPasswordFn: func(ctx context.Context, email string) error {
			return model.NewEmailNotFoundError()
		},
	}

	r := chi.NewRouter()
	r.Post("/account/forgotpassword/{email}", NewAccountHandler(svc).ForgotPassword)

	req := httptest.NewRequest(http.MethodPost, "/account/forgotpassword/nobody@example.com", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAccountHandler_ForgotPassword_Success(t *testing.T) {
	var gotEmail string
	svc := &mockAccountService{
		forgotPasswordFn: func(ctx context.Context, email string) error {
			gotEmail = email
			return nil
		},
	}

	r := chi.NewRouter()
	r.Post("/account/forgotpassword/{email}", NewAccountHandler(svc).ForgotPassword)

	req := httptest.NewRequest(http.MethodPost, "/account/forgotpassword/taro@example.com", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotEmail != "taro@example.com" {
		t.Errorf("email = %q, want from path param", gotEmail)
	}
}

func TestAccountHandler_ResetPassword_InvalidToken(t *testing.T) {
	svc := &mockAccountService{
		resetPasswordFn: func(ctx context.Context, token, password string) error {
			return model.NewInvalidResetTokenError()
		},
	}
	h := NewAccountHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/account/resetpassword?token=used-token&password=newpassword", nil)
	w := httptest.NewRecorder()

	h.ResetPassword(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp apiErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeInvalidResetToken {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeInvalidResetToken)
	}
}

func TestAccountHandler_ResetPassword_ShortPassword(t *testing.T) {
	h := NewAccountHandler(&mockAccountService{})

	req := httptest.NewRequest(http.MethodPost, "/account/resetpassword?token=some-token&password=short", nil)
	w := httptest.NewRecorder()

	h.ResetPassword(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
