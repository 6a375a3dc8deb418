package stores

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/joao-fontenele/maejang/internal/domain"
)

const uniqueViolation = "23505"

const storeColumns = `id, owner_user_id, name, description, phone, address, is_open, created_at`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the store, reporting ErrDuplicateStore when the owner already has one.
func (r *PostgresRepository) Create(ctx context.Context, store *domain.Store) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO stores (owner_user_id, name, description, phone, address, is_open, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, store.OwnerUserID, store.Name, store.Description, store.Phone, store.Address, store.IsOpen, store.CreatedAt).Scan(&store.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateStore
		}
		return err
	}
	return nil
}

// GetByID returns nil when the store does not exist.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	return r.getOne(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id)
}

// GetByOwner returns nil when the owner has no store.
func (r *PostgresRepository) GetByOwner(ctx context.Context, ownerID int64) (*domain.Store, error) {
	return r.getOne(ctx, `SELECT `+storeColumns+` FROM stores WHERE owner_user_id = $1`, ownerID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg int64) (*domain.Store, error) {
	store := &domain.Store{}

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&store.ID, &store.OwnerUserID, &store.Name, &store.Description, &store.Phone, &store.Address, &store.IsOpen, &store.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return store, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Store, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+storeColumns+`
		FROM stores
		WHERE owner_user_id = $1
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	stores := []domain.Store{}
	for rows.Next() {
		var s domain.Store
		if err := rows.Scan(&s.ID, &s.OwnerUserID, &s.Name, &s.Description, &s.Phone, &s.Address, &s.IsOpen, &s.CreatedAt); err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stores, nil
}

// SetOpen reports false when the store does not exist.
func (r *PostgresRepository) SetOpen(ctx context.Context, id int64, open bool) (bool, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE stores SET is_open = $2 WHERE id = $1`, id, open)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
