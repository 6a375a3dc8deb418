package menus

import (
	"context"
	"database/sql"
	"errors"

	"github.com/joao-fontenele/maejang/internal/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByID returns nil when the menu does not exist. Soft-deleted menus are
// returned with IsDeleted set.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*domain.Menu, error) {
	menu := &domain.Menu{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, store_id, name, price, description, option_text, category, is_deleted, created_at
		FROM menus
		WHERE id = $1
	`, id).Scan(&menu.ID, &menu.StoreID, &menu.Name, &menu.Price, &menu.Description, &menu.OptionText, &menu.Category, &menu.IsDeleted, &menu.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return menu, nil
}

func (r *PostgresRepository) ListByStore(ctx context.Context, storeID int64) ([]domain.Menu, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, store_id, name, price, description, option_text, category, is_deleted, created_at
		FROM menus
		WHERE store_id = $1 AND NOT is_deleted
		ORDER BY id
	`, storeID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	menus := []domain.Menu{}
	for rows.Next() {
		var m domain.Menu
		if err := rows.Scan(&m.ID, &m.StoreID, &m.Name, &m.Price, &m.Description, &m.OptionText, &m.Category, &m.IsDeleted, &m.CreatedAt); err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return menus, nil
}

func (r *PostgresRepository) Create(ctx context.Context, menu *domain.Menu) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO menus (store_id, name, price, description, option_text, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, menu.StoreID, menu.Name, menu.Price, menu.Description, menu.OptionText, menu.Category, menu.CreatedAt).Scan(&menu.ID)
}

// Update rewrites the editable fields of a live menu. It reports false when
// the menu is gone or already deleted.
func (r *PostgresRepository) Update(ctx context.Context, menu *domain.Menu) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE menus
		SET name = $2, price = $3, description = $4, option_text = $5, category = $6
		WHERE id = $1 AND NOT is_deleted
	`, menu.ID, menu.Name, menu.Price, menu.Description, menu.OptionText, menu.Category)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE menus SET is_deleted = TRUE
		WHERE id = $1 AND NOT is_deleted
	`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}
