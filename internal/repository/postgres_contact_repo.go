package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/contactman/internal/model"
)

// PostgresContactRepo はPostgreSQLを使用した連絡先リポジトリ。
type PostgresContactRepo struct {
	db *sql.DB
}

// NewPostgresContactRepo はPostgresContactRepoを生成する。
func NewPostgresContactRepo(db *sql.DB) *PostgresContactRepo {
	return &PostgresContactRepo{db: db}
}

const contactColumns = `id, first_name, last_name, email, favorite_color, birthday, phone, address, city, country, created_at, updated_at`

// List は全連絡先を作成日時昇順で返す。
func (r *PostgresContactRepo) List(ctx context.Context) ([]*model.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []*model.Contact{}
	for rows.Next() {
		contact := &model.Contact{}
		if err := rows.Scan(
			&contact.ID, &contact.FirstName, &contact.LastName, &contact.Email,
			&contact.FavoriteColor, &contact.Birthday, &contact.Phone,
			&contact.Address, &contact.City, &contact.Country,
			&contact.CreatedAt, &contact.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}

	return contacts, nil
}

// FindByID は指定IDの連絡先を取得する。見つからない場合はnilを返す。
func (r *PostgresContactRepo) FindByID(ctx context.Context, id string) (*model.Contact, error) {
	contact := &model.Contact{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1`,
		id,
	).Scan(
		&contact.ID, &contact.FirstName, &contact.LastName, &contact.Email,
		&contact.FavoriteColor, &contact.Birthday, &contact.Phone,
		&contact.Address, &contact.City, &contact.Country,
		&contact.CreatedAt, &contact.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}

	return contact, nil
}

// Create は連絡先を作成する。
func (r *PostgresContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (id, first_name, last_name, email, favorite_color, birthday, phone, address, city, country, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		contact.ID, contact.FirstName, contact.LastName, contact.Email,
		contact.FavoriteColor, contact.Birthday, contact.Phone,
		contact.Address, contact.City, contact.Country,
		contact.CreatedAt, contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// Update は連絡先を更新する。対象が存在しない場合はfalseを返す。
// idとcreated_atは変更しない。
func (r *PostgresContactRepo) Update(ctx context.Context, contact *model.Contact) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contacts
		 SET first_name = $2, last_name = $3, email = $4, favorite_color = $5,
		     birthday = $6, phone = $7, address = $8, city = $9, country = $10,
		     updated_at = $11
		 WHERE id = $1`,
		contact.ID, contact.FirstName, contact.LastName, contact.Email,
		contact.FavoriteColor, contact.Birthday, contact.Phone,
		contact.Address, contact.City, contact.Country,
		contact.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update contact: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Delete は指定IDの連絡先を削除する。対象が存在しない場合はfalseを返す。
func (r *PostgresContactRepo) Delete(ctx context.Context, id string) (bool, error) {
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

// compile-time interface check
var _ ContactRepository = (*PostgresContactRepo)(nil)
