package carts

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/joao-fontenele/maejang/internal/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, item *domain.CartItem) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (user_id, menu_id, option_text, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, item.UserID, item.MenuID, item.OptionText, item.Quantity, item.CreatedAt).Scan(&item.ID)
}

// GetByID returns nil when the item does not exist.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.CartItem, error) {
	item := &domain.CartItem{}

	err := r.db.QueryRowContext(ctx, `
		SELECT c.id, c.user_id, c.menu_id, m.store_id, c.option_text, c.quantity, c.created_at
		FROM cart_items c
		JOIN menus m ON m.id = c.menu_id
		WHERE c.id = $1
	`, id).Scan(&item.ID, &item.UserID, &item.MenuID, &item.StoreID, &item.OptionText, &item.Quantity, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return item, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.menu_id, m.store_id, c.option_text, c.quantity, c.created_at
		FROM cart_items c
		JOIN menus m ON m.id = c.menu_id
		WHERE c.user_id = $1
		ORDER BY c.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.MenuID, &item.StoreID, &item.OptionText, &item.Quantity, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) DeleteMany(ctx context.Context, userID int64, ids []int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND id = ANY($2)`, userID, pq.Array(ids))
	return err
}
