package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storeapi/internal/catalog"
	"github.com/hitoshi/storeapi/internal/model"
	"github.com/hitoshi/storeapi/internal/repository"
)

// maxImageUploadBytes は商品画像アップロードの上限サイズ。
const maxImageUploadBytes = 10 << 20

// CatalogServiceInterface は商品ハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	// List は検索条件に合致する商品の1ページを返す。
	List(ctx context.Context, query repository.ProductQuery) (*catalog.ListResult, error)
	// Get は指定IDの商品を返す。
	Get(ctx context.Context, id int64) (*model.Product, error)
	// Categories は商品カテゴリの固定リストを返す。
	Categories() []string
	// Create は商品を登録する。
	Create(ctx context.Context, input catalog.ProductInput) (*model.Product, error)
	// Update は商品を更新する。
	Update(ctx context.Context, id int64, input catalog.ProductInput) (*model.Product, error)
	// Delete は商品を削除する。
	Delete(ctx context.Context, id int64) error
}

// ProductHandler は商品カタログのHTTPハンドラー。
// 登録・更新は画像ファイルを含むmultipart/form-dataで受け取る。
type ProductHandler struct {
	service CatalogServiceInterface
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(service CatalogServiceInterface) *ProductHandler {
	return &ProductHandler{service: service}
}

// List は商品一覧を処理する。
// GET /api/products?search=&category=&minPrice=&maxPrice=&sort=&order=&page=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query, apiErr := parseProductQuery(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	result, err := h.service.List(r.Context(), query)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

// Get は商品詳細を処理する。
// GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, product)
}

// Categories はカテゴリ一覧を処理する。
// GET /api/products/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.service.Categories())
}

// Create は商品登録を処理する。
// POST /api/products (multipart/form-data)
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, apiErr := parseProductForm(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	product, err := h.service.Create(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, product)
}

// Update は商品更新を処理する。画像は任意で、添付時のみ差し替わる。
// PUT /api/products/{id} (multipart/form-data)
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	input, apiErr := parseProductForm(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	product, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, product)
}

// Delete は商品削除を処理する。
// DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// --- ヘルパー関数 ---

// parseIDParam はパスパラメータのIDを解析する。失敗時はレスポンスを書き込みfalseを返す。
func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(map[string]string{
			"id": "IDは正の整数で指定してください。",
		}))
		return 0, false
	}
	return id, true
}

// parseProductQuery はクエリパラメータから商品検索条件を組み立てる。
func parseProductQuery(r *http.Request) (repository.ProductQuery, *model.APIError) {
	q := r.URL.Query()
	query := repository.ProductQuery{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
		Order:    q.Get("order"),
	}

	if raw := q.Get("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return query, model.NewValidationError(map[string]string{"minPrice": "数値で指定してください。"})
		}
		query.MinPrice = &v
	}
	if raw := q.Get("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return query, model.NewValidationError(map[string]string{"maxPrice": "数値で指定してください。"})
		}
		query.MaxPrice = &v
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return query, model.NewValidationError(map[string]string{"page": "ページ番号は正の整数で指定してください。"})
		}
		query.Page = page
	}

	return query, nil
}

// parseProductForm はmultipartフォームから商品入力を組み立てる。
// 画像ファイルは任意。必須性の判断はサービス層が行う。
func parseProductForm(r *http.Request) (catalog.ProductInput, *model.APIError) {
	var input catalog.ProductInput

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		return input, model.NewValidationError(map[string]string{
			"_": "multipart/form-data形式でリクエストしてください。",
		})
	}

	input.Name = r.FormValue("name")
	input.Brand = r.FormValue("brand")
	input.Category = r.FormValue("category")
	input.Description = r.FormValue("description")

	fields := make(map[string]string)
	if input.Name == "" {
		fields["name"] = "必須項目です。"
	}
	if input.Brand == "" {
		fields["brand"] = "必須項目です。"
	}
	if input.Category == "" {
		fields["category"] = "必須項目です。"
	}

	priceRaw := r.FormValue("price")
	if priceRaw == "" {
		fields["price"] = "必須項目です。"
	} else {
		price, err := strconv.ParseFloat(priceRaw, 64)
		if err != nil || price <= 0 {
			fields["price"] = "0より大きい数値を入力してください。"
		} else {
			input.Price = price
		}
	}

	if len(fields) > 0 {
		return input, model.NewValidationError(fields)
	}

	file, header, err := r.FormFile("imageFile")
	if err == nil {
		input.Image = file
		input.ImageName = header.Filename
	}

	return input, nil
}
