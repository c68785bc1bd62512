package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"pcb-shop/models"
)

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Record(ctx context.Context, rec *models.OrderRecord) error {
	query := `
		INSERT INTO checkout_orders (user_id, remote_order_id, order_number, item_count, subtotal,
			shipping_fee, total, shipping_method_id, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		rec.UserID, rec.RemoteOrderID, rec.OrderNumber, rec.ItemCount, rec.Subtotal,
		rec.ShippingFee, rec.Total, rec.ShippingMethod, rec.PaymentMethod,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert checkout order: %w", err)
	}
	return nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.OrderRecord, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := `SELECT id, user_id, remote_order_id, order_number, item_count, subtotal, shipping_fee,
	          total, shipping_method_id, payment_method, created_at
	          FROM checkout_orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query checkout orders: %w", err)
	}
	defer rows.Close()

	records := []models.OrderRecord{}
	for rows.Next() {
		var rec models.OrderRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.RemoteOrderID, &rec.OrderNumber, &rec.ItemCount,
			&rec.Subtotal, &rec.ShippingFee, &rec.Total, &rec.ShippingMethod, &rec.PaymentMethod, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan checkout order: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
