package addresses

import (
	"context"
	"database/sql"
	"errors"

	"github.com/joao-fontenele/maejang/internal/domain"
)

// PostgresStore serializes a user's address writes by locking the user's row
// for the length of the transaction. The partial unique index on
// (user_id) WHERE is_default backs the invariant at the storage level.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) WithUserLock(ctx context.Context, userID int64, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var locked int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID int64) ([]domain.Address, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, label, text, is_default, created_at
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	addresses := []domain.Address{}
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.ID, &a.OwnerUserID, &a.Label, &a.Text, &a.IsDefault, &a.CreatedAt); err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return addresses, nil
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) Get(ctx context.Context, id int64) (*domain.Address, error) {
	a := &domain.Address{}

	err := t.tx.QueryRowContext(ctx, `
		SELECT id, user_id, label, text, is_default, created_at
		FROM addresses
		WHERE id = $1
	`, id).Scan(&a.ID, &a.OwnerUserID, &a.Label, &a.Text, &a.IsDefault, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return a, nil
}

func (t *pgTx) ClearDefault(ctx context.Context, userID int64) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE addresses SET is_default = FALSE
		WHERE user_id = $1 AND is_default
	`, userID)
	return err
}

func (t *pgTx) SetDefault(ctx context.Context, id int64) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE addresses SET is_default = TRUE WHERE id = $1`, id)
	return err
}

func (t *pgTx) Insert(ctx context.Context, a *domain.Address) error {
	return t.tx.QueryRowContext(ctx, `
		INSERT INTO addresses (user_id, label, text, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, a.OwnerUserID, a.Label, a.Text, a.IsDefault, a.CreatedAt).Scan(&a.ID)
}

func (t *pgTx) Update(ctx context.Context, a *domain.Address) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE addresses SET label = $2, text = $3
		WHERE id = $1
	`, a.ID, a.Label, a.Text)
	return err
}

func (t *pgTx) Delete(ctx context.Context, id int64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	return err
}
