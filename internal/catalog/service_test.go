package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/hitoshi/storeapi/internal/model"
	"github.com/hitoshi/storeapi/internal/repository"
)

// --- モック定義 ---

type mockProductRepo struct {
	findByIDFn func(ctx context.Context, id int64) (*model.Product, error)
	listFn     func(ctx context.Context, query repository.ProductQuery, pageSize int) ([]*model.Product, int, error)
	createFn   func(ctx context.Context, product *model.Product) error
	updateFn   func(ctx context.Context, product *model.Product) error
	deleteFn   func(ctx context.Context, id int64) (bool, error)
}

func (m *mockProductRepo) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProductRepo) List(ctx context.Context, query repository.ProductQuery, pageSize int) ([]*model.Product, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, query, pageSize)
	}
	return nil, 0, nil
}

func (m *mockProductRepo) Create(ctx context.Context, product *model.Product) error {
	if m.createFn != nil {
		return m.createFn(ctx, product)
	}
	product.ID = 1
	return nil
}

func (m *mockProductRepo) Update(ctx context.Context, product *model.Product) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, product)
	}
	return nil
}

func (m *mockProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return true, nil
}

// mockImageStore は保存・削除されたファイル名を記録するImageStore実装。
type mockImageStore struct {
	saved   []string
	removed []string
	saveErr error
}

func (m *mockImageStore) Save(reader io.Reader, originalName string) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	name := "stored-" + originalName
	m.saved = append(m.saved, name)
	return name, nil
}

func (m *mockImageStore) Remove(fileName string) error {
	m.removed = append(m.removed, fileName)
	return nil
}

func newTestCatalogService(repo *mockProductRepo, images *mockImageStore) *Service {
	return NewService(repo, images, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- テスト ---

func TestCatalogService_List_TotalPages(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		wantPages int
	}{
		{"空の結果", 0, 0},
		{"1ページ未満", 3, 1},
		{"ちょうど1ページ", 5, 1},
		{"端数あり", 12, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockProductRepo{
				listFn: func(ctx context.Context, query repository.ProductQuery, pageSize int) ([]*model.Product, int, error) {
					if pageSize != PageSize {
						t.Errorf("pageSize = %d, want %d", pageSize, PageSize)
					}
					return []*model.Product{}, tt.total, nil
				},
			}
			svc := newTestCatalogService(repo, &mockImageStore{})

			result, err := svc.List(context.Background(), repository.ProductQuery{Page: 1})
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if result.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantPages)
			}
			if result.Products == nil {
				t.Error("Products should be an empty slice, not nil")
			}
		})
	}
}

func TestCatalogService_List_DefaultsToFirstPage(t *testing.T) {
	var gotPage int
	repo := &mockProductRepo{
		listFn: func(ctx context.Context, query repository.ProductQuery, pageSize int) ([]*model.Product, int, error) {
			gotPage = query.Page
			return nil, 0, nil
		},
	}
	svc := newTestCatalogService(repo, &mockImageStore{})

	result, err := svc.List(context.Background(), repository.ProductQuery{Page: 0})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if gotPage != 1 {
		t.Errorf("query page = %d, want 1", gotPage)
	}
	if result.Page != 1 {
		t.Errorf("result page = %d, want 1", result.Page)
	}
}

func TestCatalogService_Get_NotFound(t *testing.T) {
	svc := newTestCatalogService(&mockProductRepo{}, &mockImageStore{})

	_, err := svc.Get(context.Background(), 42)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProductNotFound {
		t.Fatalf("Get() error = %v, want PRODUCT_NOT_FOUND", err)
	}
}

func TestCatalogService_Create_Success(t *testing.T) {
	images := &mockImageStore{}
	repo := &mockProductRepo{}
	svc := newTestCatalogService(repo, images)

	product, err := svc.Create(context.Background(), ProductInput{
		Name:      "Pixel 9",
		Brand:     "Google",
		Category:  "Phones",
		Price:     999,
		Image:     strings.NewReader("fake image bytes"),
		ImageName: "pixel.png",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if product.ImageFileName != "stored-pixel.png" {
		t.Errorf("ImageFileName = %q, want saved file name", product.ImageFileName)
	}
	if len(images.saved) != 1 {
		t.Errorf("saved %d images, want 1", len(images.saved))
	}
}

func TestCatalogService_Create_InvalidCategory(t *testing.T) {
	svc := newTestCatalogService(&mockProductRepo{}, &mockImageStore{})

	_, err := svc.Create(context.Background(), ProductInput{
		Name:     "Widget",
		Brand:    "Acme",
		Category: "Gadgets",
		Price:    10,
		Image:    strings.NewReader("img"),
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCategory {
		t.Fatalf("Create() error = %v, want INVALID_CATEGORY", err)
	}
}

func TestCatalogService_Create_ImageRequired(t *testing.T) {
	svc := newTestCatalogService(&mockProductRepo{}, &mockImageStore{})

	_, err := svc.Create(context.Background(), ProductInput{
		Name:     "Pixel 9",
		Brand:    "Google",
		Category: "Phones",
		Price:    999,
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeImageRequired {
		t.Fatalf("Create() error = %v, want IMAGE_REQUIRED", err)
	}
}

func TestCatalogService_Create_RemovesImageOnStoreFailure(t *testing.T) {
	images := &mockImageStore{}
	repo := &mockProductRepo{
		createFn: func(ctx context.Context, product *model.Product) error {
			return errors.New("db down")
		},
	}
	svc := newTestCatalogService(repo, images)

	_, err := svc.Create(context.Background(), ProductInput{
		Name:      "Pixel 9",
		Brand:     "Google",
		Category:  "Phones",
		Price:     999,
		Image:     strings.NewReader("img"),
		ImageName: "pixel.png",
	})
	if err == nil {
		t.Fatal("Create() should fail when repository fails")
	}

	// DB保存に失敗したら孤児画像を残さないこと
	if len(images.removed) != 1 || images.removed[0] != "stored-pixel.png" {
		t.Errorf("removed = %v, want the orphan image removed", images.removed)
	}
}

func TestCatalogService_Update_ReplacesImage(t *testing.T) {
	images := &mockImageStore{}
	repo := &mockProductRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Product, error) {
			return &model.Product{ID: id, Name: "Old", Category: "Phones", ImageFileName: "old.png"}, nil
		},
	}
	svc := newTestCatalogService(repo, images)

	product, err := svc.Update(context.Background(), 1, ProductInput{
		Name:      "New",
		Brand:     "Google",
		Category:  "Phones",
		Price:     500,
		Image:     strings.NewReader("img"),
		ImageName: "new.png",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if product.ImageFileName != "stored-new.png" {
		t.Errorf("ImageFileName = %q, want new image", product.ImageFileName)
	}
	// 古い画像は削除されること
	if len(images.removed) != 1 || images.removed[0] != "old.png" {
		t.Errorf("removed = %v, want old image removed", images.removed)
	}
}

func TestCatalogService_Update_KeepsImageWhenNotProvided(t *testing.T) {
	images := &mockImageStore{}
	repo := &mockProductRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Product, error) {
			return &model.Product{ID: id, Name: "Old", Category: "Phones", ImageFileName: "old.png"}, nil
		},
	}
	svc := newTestCatalogService(repo, images)

	product, err := svc.Update(context.Background(), 1, ProductInput{
		Name:     "New",
		Brand:    "Google",
		Category: "Phones",
		Price:    500,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if product.ImageFileName != "old.png" {
		t.Errorf("ImageFileName = %q, want existing image kept", product.ImageFileName)
	}
	if len(images.removed) != 0 {
		t.Errorf("removed = %v, want nothing removed", images.removed)
	}
}

func TestCatalogService_Update_NotFound(t *testing.T) {
	svc := newTestCatalogService(&mockProductRepo{}, &mockImageStore{})

	_, err := svc.Update(context.Background(), 42, ProductInput{Category: "Phones"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProductNotFound {
		t.Fatalf("Update() error = %v, want PRODUCT_NOT_FOUND", err)
	}
}

func TestCatalogService_Delete_RemovesImage(t *testing.T) {
	images := &mockImageStore{}
	repo := &mockProductRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Product, error) {
			return &model.Product{ID: id, ImageFileName: "gone.png"}, nil
		},
	}
	svc := newTestCatalogService(repo, images)

	if err := svc.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if len(images.removed) != 1 || images.removed[0] != "gone.png" {
		t.Errorf("removed = %v, want product image removed", images.removed)
	}
}

func TestCatalogService_Delete_NotFound(t *testing.T) {
	svc := newTestCatalogService(&mockProductRepo{}, &mockImageStore{})

	err := svc.Delete(context.Background(), 42)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProductNotFound {
		t.Fatalf("Delete() error = %v, want PRODUCT_NOT_FOUND", err)
	}
}
