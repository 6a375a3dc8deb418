package orders

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

func (r *PostgresRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_user_id, store_id, total_price, note, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`, order.CustomerUserID, order.StoreID, order.TotalPrice, order.Note, order.Status, order.CreatedAt).Scan(&order.ID)
	if err != nil {
		return err
	}

	for _, line := range order.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, menu_id, option_text, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, order.ID, line.MenuID, line.OptionText, line.Quantity, line.UnitPrice)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_user_id, store_id, total_price, note, status, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.CustomerUserID, &order.StoreID, &order.TotalPrice, &order.Note, &order.Status, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT menu_id, option_text, quantity, unit_price
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	order.Lines = []domain.OrderLine{}
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.MenuID, &line.OptionText, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *PostgresRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT id, customer_user_id, store_id, total_price, note, status, created_at
		FROM orders
		WHERE customer_user_id = $1
		ORDER BY created_at DESC, id DESC
	`, customerID)
}

// ListByOwner returns the orders placed against every store the owner runs.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT o.id, o.customer_user_id, o.store_id, o.total_price, o.note, o.status, o.created_at
		FROM orders o
		JOIN stores s ON s.id = o.store_id
		WHERE s.owner_user_id = $1
		ORDER BY o.created_at DESC, o.id DESC
	`, ownerID)
}

func (r *PostgresRepository) CompareAndSetStatus(ctx context.Context, id int64, from, to domain.OrderStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[int64]*domain.Order)
	var orderIDs []int64

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.CustomerUserID, &order.StoreID, &order.TotalPrice, &order.Note, &order.Status, &order.CreatedAt); err != nil {
			return nil, err
		}
		order.Lines = []domain.OrderLine{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	lineRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, menu_id, option_text, quantity, unit_price
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = lineRows.Close() }()

	for lineRows.Next() {
		var orderID int64
		var line domain.OrderLine
		if err := lineRows.Scan(&orderID, &line.MenuID, &line.OptionText, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.Lines = append(order.Lines, line)
	}

	if err := lineRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}
