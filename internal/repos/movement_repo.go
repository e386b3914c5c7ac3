package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type MovementRepo struct{ db *sqlx.DB }

func NewMovementRepo(db *sqlx.DB) *MovementRepo { return &MovementRepo{db: db} }

// Row used by the reports activity feed
type MovementRow struct {
	ID            string `db:"id"`
	ProductID     string `db:"product_id"`
	ProductName   string `db:"product_name"`
	SKU           string `db:"sku"`
	Delta         int    `db:"delta"`
	Reason        string `db:"reason"`
	QuantityAfter int    `db:"quantity_after"`
	ActorID       string `db:"actor_id"`
	CreatedAt     string `db:"created_at"`
}

// Recent returns the newest movements with their product names attached.
func (r *MovementRepo) Recent(limit int) ([]MovementRow, error) {
	var rows []MovementRow
	err := r.db.Select(&rows, `
		SELECT m.id, m.product_id, p.name AS product_name, p.sku,
		       m.delta, m.reason, m.quantity_after,
		       COALESCE(m.actor_id,'') AS actor_id, m.created_at
		FROM stock_movements m
		JOIN products p ON p.id = m.product_id
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ?
	`, limit)
	return rows, err
}

// MovementStats summarizes the audit trail for the reports page.
type MovementStats struct {
	TotalMovements int
	MostMoved      string
}

// Stats counts movements and names the product that moved most often.
// MostMoved is empty when nothing has moved yet.
func (r *MovementRepo) Stats() (MovementStats, error) {
	var s MovementStats
	if err := r.db.Get(&s.TotalMovements, `SELECT COUNT(*) FROM stock_movements`); err != nil {
		return s, err
	}
	err := r.db.Get(&s.MostMoved, `
		SELECT p.name
		FROM stock_movements m
		JOIN products p ON p.id = m.product_id
		GROUP BY m.product_id
		ORDER BY COUNT(*) DESC, p.name
		LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return s, nil
	}
	return s, err
}

// ByProduct returns a product's own movement history, newest first.
func (r *MovementRepo) ByProduct(productID string, limit int) ([]MovementRow, error) {
	var rows []MovementRow
	err := r.db.Select(&rows, `
		SELECT m.id, m.product_id, p.name AS product_name, p.sku,
		       m.delta, m.reason, m.quantity_after,
		       COALESCE(m.actor_id,'') AS actor_id, m.created_at
		FROM stock_movements m
		JOIN products p ON p.id = m.product_id
		WHERE m.product_id = ?
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ?
	`, productID, limit)
	return rows, err
}
