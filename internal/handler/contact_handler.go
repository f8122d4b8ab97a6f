package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hitoshi/storeapi/internal/contact"
	"github.com/hitoshi/storeapi/internal/model"
)

// ContactServiceInterface は問い合わせハンドラーが必要とするサービスインターフェース。
type ContactServiceInterface interface {
	// Subjects は件名の一覧を返す。
	Subjects(ctx context.Context) ([]*model.Subject, error)
	// List は問い合わせの1ページを返す。
	List(ctx context.Context, page int) (*contact.ListResult, error)
	// Get は指定IDの問い合わせを返す。
	Get(ctx context.Context, id int64) (*model.Contact, error)
	// Create は問い合わせを登録する。
	Create(ctx context.Context, input contact.ContactInput) (*model.Contact, error)
	// Update は問い合わせを更新する。空のフィールドは既存の値を維持する。
	Update(ctx context.Context, id int64, input contact.ContactInput) (*model.Contact, error)
	// Delete は問い合わせを削除する。
	Delete(ctx context.Context, id int64) error
}

// ContactHandler は問い合わせ管理のHTTPハンドラー。
type ContactHandler struct {
	service ContactServiceInterface
}

// NewContactHandler はContactHandlerを生成する。
func NewContactHandler(service ContactServiceInterface) *ContactHandler {
	return &ContactHandler{service: service}
}

// contactRequest は問い合わせの登録・更新リクエストのボディ。
type contactRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Phone     string `json:"phone" validate:"required,max=20"`
	SubjectID int64  `json:"subjectId" validate:"required,gt=0"`
	Message   string `json:"message" validate:"required,max=2000"`
}

// Subjects は件名一覧を処理する。
// GET /api/contacts/subjects
func (h *ContactHandler) Subjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.service.Subjects(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, subjects)
}

// List は問い合わせ一覧を処理する。
// GET /api/contacts?page=
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(map[string]string{
				"page": "ページ番号は正の整数で指定してください。",
			}))
			return
		}
		page = v
	}

	result, err := h.service.List(r.Context(), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

// Get は問い合わせ詳細を処理する。
// GET /api/contacts/{id}
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, c)
}

// Create は問い合わせ登録を処理する。
// POST /api/contacts
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if err := validate.Struct(req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(validationFields(err)))
		return
	}

	c, err := h.service.Create(r.Context(), contact.ContactInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		SubjectID: req.SubjectID,
		Message:   req.Message,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, c)
}

// Update は問い合わせ更新を処理する。空のフィールドは既存の値を維持するため、
// 登録時と違って全フィールドの必須検証は行わない。
// PUT /api/contacts/{id}
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	c, err := h.service.Update(r.Context(), id, contact.ContactInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		SubjectID: req.SubjectID,
		Message:   req.Message,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, c)
}

// Delete は問い合わせ削除を処理する。
// DELETE /api/contacts/{id}
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
