package accounts

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/joao-fontenele/maejang/internal/domain"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the user, reporting ErrDuplicateEmail when the email is taken.
func (r *PostgresRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, name, phone, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, user.Email, user.PasswordHash, user.Name, user.Phone, user.Role, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// FindByEmail returns nil when no user has the email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user := &domain.User{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, phone, role, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Phone, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}
