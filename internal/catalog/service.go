package catalog

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/hitoshi/storeapi/internal/model"
	"github.com/hitoshi/storeapi/internal/repository"
)

// PageSize は商品一覧の1ページあたりの件数。
const PageSize = 5

// ListResult は商品一覧のページング付きレスポンスを表す。
type ListResult struct {
	Products   []*model.Product `json:"products"`
	TotalPages int              `json:"totalPages"`
	PageSize   int              `json:"pageSize"`
	Page       int              `json:"page"`
}

// ProductInput は商品の登録・更新入力を表す。
// Imageがnilの場合、更新では既存画像を維持し、登録ではエラーになる。
type ProductInput struct {
	Name        string
	Brand       string
	Category    string
	Description string
	Price       float64
	Image       io.Reader
	ImageName   string
}

// Service は商品カタログのビジネスロジックを提供する。
type Service struct {
	products repository.ProductRepository
	images   ImageStore
	logger   *slog.Logger
}

// NewService は新しいServiceを生成する。
func NewService(products repository.ProductRepository, images ImageStore, logger *slog.Logger) *Service {
	return &Service{
		products: products,
		images:   images,
		logger:   logger,
	}
}

// List は検索条件に合致する商品の1ページを返す。
// ページ番号が未指定または0以下の場合は1ページ目を返す。
func (s *Service) List(ctx context.Context, query repository.ProductQuery) (*ListResult, error) {
	if query.Page < 1 {
		query.Page = 1
	}

	products, total, err := s.products.List(ctx, query, PageSize)
	if err != nil {
		s.logger.Error("failed to list products", slog.String("error", err.Error()))
		return nil, err
	}

	totalPages := (total + PageSize - 1) / PageSize
	if products == nil {
		products = []*model.Product{}
	}

	return &ListResult{
		Products:   products,
		TotalPages: totalPages,
		PageSize:   PageSize,
		Page:       query.Page,
	}, nil
}

// Get は指定IDの商品を返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to find product", slog.Int64("product_id", id), slog.String("error", err.Error()))
		return nil, err
	}
	if product == nil {
		return nil, model.NewProductNotFoundError(id)
	}
	return product, nil
}

// Categories は商品カテゴリの固定リストを返す。
func (s *Service) Categories() []string {
	return model.Categories
}

// Create は商品を登録する。画像は必須で、保存後のファイル名が商品に記録される。
func (s *Service) Create(ctx context.Context, input ProductInput) (*model.Product, error) {
	if !model.IsValidCategory(input.Category) {
		return nil, model.NewInvalidCategoryError(input.Category)
	}
	if input.Image == nil {
		return nil, model.NewImageRequiredError()
	}

	fileName, err := s.images.Save(input.Image, input.ImageName)
	if err != nil {
		s.logger.Error("failed to save product image", slog.String("error", err.Error()))
		return nil, err
	}

	product := &model.Product{
		Name:          input.Name,
		Brand:         input.Brand,
		Category:      input.Category,
		Description:   input.Description,
		Price:         input.Price,
		ImageFileName: fileName,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("failed to create product", slog.String("error", err.Error()))
		// 商品が保存できなかったので画像も残さない
		if rmErr := s.images.Remove(fileName); rmErr != nil {
			s.logger.Warn("failed to remove orphan image", slog.String("error", rmErr.Error()))
		}
		return nil, err
	}

	s.logger.Info("product created",
		slog.Int64("product_id", product.ID),
		slog.String("category", product.Category),
	)
	return product, nil
}

// Update は商品を更新する。画像が添付されていれば差し替え、古い画像を削除する。
// 添付が無い場合は既存の画像ファイル名を維持する。
func (s *Service) Update(ctx context.Context, id int64, input ProductInput) (*model.Product, error) {
	if !model.IsValidCategory(input.Category) {
		return nil, model.NewInvalidCategoryError(input.Category)
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to find product", slog.Int64("product_id", id), slog.String("error", err.Error()))
		return nil, err
	}
	if product == nil {
		return nil, model.NewProductNotFoundError(id)
	}

	oldFileName := ""
	if input.Image != nil {
		fileName, err := s.images.Save(input.Image, input.ImageName)
		if err != nil {
			s.logger.Error("failed to save product image", slog.String("error", err.Error()))
			return nil, err
		}
		oldFileName = product.ImageFileName
		product.ImageFileName = fileName
	}

	product.Name = input.Name
	product.Brand = input.Brand
	product.Category = input.Category
	product.Description = input.Description
	product.Price = input.Price

	if err := s.products.Update(ctx, product); err != nil {
		s.logger.Error("failed to update product", slog.Int64("product_id", id), slog.String("error", err.Error()))
		return nil, err
	}

	if oldFileName != "" && oldFileName != product.ImageFileName {
		if err := s.images.Remove(oldFileName); err != nil {
			s.logger.Warn("failed to remove old image",
				slog.Int64("product_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("product updated", slog.Int64("product_id", product.ID))
	return product, nil
}

// Delete は商品と画像ファイルを削除する。
func (s *Service) Delete(ctx context.Context, id int64) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to find product", slog.Int64("product_id", id), slog.String("error", err.Error()))
		return err
	}
	if product == nil {
		return model.NewProductNotFoundError(id)
	}

	deleted, err := s.products.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete product", slog.Int64("product_id", id), slog.String("error", err.Error()))
		return err
	}
	if !deleted {
		return model.NewProductNotFoundError(id)
	}

	if err := s.images.Remove(product.ImageFileName); err != nil {
		s.logger.Warn("failed to remove image",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("product deleted", slog.Int64("product_id", id))
	return nil
}
