package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/storeapi/internal/model"
)

// PostgresSubjectRepo はPostgreSQLを使用した件名マスタリポジトリ。
type PostgresSubjectRepo struct {
	db *sql.DB
}

// NewPostgresSubjectRepo はPostgresSubjectRepoを生成する。
func NewPostgresSubjectRepo(db *sql.DB) *PostgresSubjectRepo {
	return &PostgresSubjectRepo{db: db}
}

// List は件名の一覧をID順で返す。
func (r *PostgresSubjectRepo) List(ctx context.Context) ([]*model.Subject, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM subjects ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []*model.Subject
	for rows.Next() {
		subject := &model.Subject{}
		if err := rows.Scan(&subject.ID, &subject.Name); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subjects: %w", err)
	}

	return subjects, nil
}

// FindByID は指定IDの件名を取得する。見つからない場合はnilを返す。
func (r *PostgresSubjectRepo) FindByID(ctx context.Context, id int64) (*model.Subject, error) {
	subject := &model.Subject{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM subjects WHERE id = $1`,
		id,
	).Scan(&subject.ID, &subject.Name)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subject by ID: %w", err)
	}

	return subject, nil
}

// PostgresContactRepo はPostgreSQLを使用した問い合わせリポジトリ。
type PostgresContactRepo struct {
	db *sql.DB
}

// NewPostgresContactRepo はPostgresContactRepoを生成する。
func NewPostgresContactRepo(db *sql.DB) *PostgresContactRepo {
	return &PostgresContactRepo{db: db}
}

const contactColumns = `c.id, c.first_name, c.last_name, c.email, c.phone, c.message, c.created_at, s.id, s.name`

// FindByID は指定IDの問い合わせを件名付きで取得する。見つからない場合はnilを返す。
func (r *PostgresContactRepo) FindByID(ctx context.Context, id int64) (*model.Contact, error) {
	contact, err := scanContact(r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+`
		 FROM contacts c JOIN subjects s ON s.id = c.subject_id
		 WHERE c.id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find contact by ID: %w", err)
	}
	return contact, nil
}

// List は問い合わせのページ（ID昇順、件名付き）と総件数を返す。
func (r *PostgresContactRepo) List(ctx context.Context, page, pageSize int) ([]*model.Contact, int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contacts`,
	).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactColumns+`
		 FROM contacts c JOIN subjects s ON s.id = c.subject_id
		 ORDER BY c.id LIMIT $1 OFFSET $2`,
		pageSize, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*model.Contact
	for rows.Next() {
		contact := &model.Contact{}
		if err := rows.Scan(
			&contact.ID, &contact.FirstName, &contact.LastName, &contact.Email,
			&contact.Phone, &contact.Message, &contact.CreatedAt,
			&contact.Subject.ID, &contact.Subject.Name,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate contacts: %w", err)
	}

	return contacts, count, nil
}

// Create は問い合わせを作成し、採番されたIDをcontact.IDに書き戻す。
func (r *PostgresContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO contacts (first_name, last_name, email, phone, subject_id, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		contact.Subject.ID, contact.Message, contact.CreatedAt,
	).Scan(&contact.ID)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// Update は問い合わせを上書き更新する。
func (r *PostgresContactRepo) Update(ctx context.Context, contact *model.Contact) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE contacts
		 SET first_name = $1, last_name = $2, email = $3, phone = $4, subject_id = $5, message = $6
		 WHERE id = $7`,
		contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		contact.Subject.ID, contact.Message, contact.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

// Delete は指定IDの問い合わせを削除する。対象が存在しない場合はfalseを返す。
func (r *PostgresContactRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM contacts WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete contact: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// scanContact は1行の問い合わせレコードをスキャンする。行が存在しない場合はnilを返す。
func scanContact(row *sql.Row) (*model.Contact, error) {
	contact := &model.Contact{}
	err := row.Scan(
		&contact.ID, &contact.FirstName, &contact.LastName, &contact.Email,
		&contact.Phone, &contact.Message, &contact.CreatedAt,
		&contact.Subject.ID, &contact.Subject.Name,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// compile-time interface checks
var (
	_ SubjectRepository = (*PostgresSubjectRepo)(nil)
	_ ContactRepository = (*PostgresContactRepo)(nil)
)
