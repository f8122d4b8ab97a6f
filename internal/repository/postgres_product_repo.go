package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/storeapi/internal/model"
)

// PostgresProductRepo はPostgreSQLを使用した商品リポジトリ。
type PostgresProductRepo struct {
	db *sql.DB
}

// NewPostgresProductRepo はPostgresProductRepoを生成する。
func NewPostgresProductRepo(db *sql.DB) *PostgresProductRepo {
	return &PostgresProductRepo{db: db}
}

// sortColumns はソートキーとカラム名の対応表。
// SQLへ連結するカラム名はこの表に限定する。
var sortColumns = map[string]string{
	"id":       "id",
	"name":     "name",
	"brand":    "brand",
	"category": "category",
	"price":    "price",
	"date":     "created_at",
}

// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
func (r *PostgresProductRepo) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	product := &model.Product{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, brand, category, description, price, image_file_name, created_at
		 FROM products WHERE id = $1`,
		id,
	).Scan(
		&product.ID, &product.Name, &product.Brand, &product.Category,
		&product.Description, &product.Price, &product.ImageFileName, &product.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List は検索条件に合致する商品のページと総件数を返す。
func (r *PostgresProductRepo) List(ctx context.Context, query ProductQuery, pageSize int) ([]*model.Product, int, error) {
	where, args := buildProductFilter(query)

	// 総件数を取得
	var count int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products`+where, args...,
	).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	// ソート条件を組み立てる。未知のソートキーはidにフォールバックする。
	column, ok := sortColumns[strings.ToLower(query.Sort)]
	if !ok {
		column = "id"
	}
	direction := "DESC"
	if query.Order == "asc" {
		direction = "ASC"
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	args = append(args, pageSize, offset)
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(
			`SELECT id, name, brand, category, description, price, image_file_name, created_at
			 FROM products%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
			where, column, direction, len(args)-1, len(args),
		),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		product := &model.Product{}
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Brand, &product.Category,
			&product.Description, &product.Price, &product.ImageFileName, &product.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, count, nil
}

// Create は商品を作成し、採番されたIDをproduct.IDに書き戻す。
func (r *PostgresProductRepo) Create(ctx context.Context, product *model.Product) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (name, brand, category, description, price, image_file_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		product.Name, product.Brand, product.Category, product.Description,
		product.Price, product.ImageFileName, product.CreatedAt,
	).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// Update は商品情報を上書き更新する。
func (r *PostgresProductRepo) Update(ctx context.Context, product *model.Product) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products
		 SET name = $1, brand = $2, category = $3, description = $4, price = $5, image_file_name = $6
		 WHERE id = $7`,
		product.Name, product.Brand, product.Category, product.Description,
		product.Price, product.ImageFileName, product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Delete は指定IDの商品を削除する。対象が存在しない場合はfalseを返す。
func (r *PostgresProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM products WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// buildProductFilter は検索条件からWHERE句とバインド引数を組み立てる。
func buildProductFilter(query ProductQuery) (string, []any) {
	var conditions []string
	var args []any

	if query.Search != "" {
		args = append(args, "%"+query.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(name LIKE $%d OR description LIKE $%d)", n, n))
	}
	if query.Category != "" {
		args = append(args, query.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if query.MinPrice != nil {
		args = append(args, *query.MinPrice)
		conditions = append(conditions, fmt.Sprintf("price >= $%d", len(args)))
	}
	if query.MaxPrice != nil {
		args = append(args, *query.MaxPrice)
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// compile-time interface check
var _ ProductRepository = (*PostgresProductRepo)(nil)
