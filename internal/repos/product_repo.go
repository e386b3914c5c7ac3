package repos

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stockroom/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateSKU      = errors.New("sku already in use")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
  id, name, sku, quantity, price, reorder_level,
  created_at, COALESCE(updated_at,'') AS updated_at`

// List returns every product in insertion order, oldest first, matching
// how rows appear on the dashboard table.
func (r *ProductRepo) List() ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
  SELECT `+productCols+`
  FROM products
  ORDER BY created_at, id`)
	return out, err
}

// Search filters by name or stock code, case-insensitively.
func (r *ProductRepo) Search(q string) ([]domain.Product, error) {
	like := "%" + strings.ToLower(q) + "%"
	var out []domain.Product
	err := r.db.Select(&out, `
  SELECT `+productCols+`
  FROM products
  WHERE LOWER(name) LIKE ? OR LOWER(sku) LIKE ?
  ORDER BY created_at, id`, like, like)
	return out, err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
  SELECT `+productCols+`
  FROM products
  WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// BySKU looks a product up by stock code, case-insensitively.
func (r *ProductRepo) BySKU(sku string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
  SELECT `+productCols+`
  FROM products
  WHERE LOWER(sku) = LOWER(?)`, sku)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

func (r *ProductRepo) Create(p domain.Product) error {
	_, err := r.db.Exec(`
  INSERT INTO products(id, name, sku, quantity, price, reorder_level)
  VALUES (?,?,?,?,?,?)`,
		p.ID, p.Name, p.SKU, p.Quantity, p.Price.String(), p.ReorderLevel)
	if isUniqueViolation(err) {
		return ErrDuplicateSKU
	}
	return err
}

// Update rewrites the editable fields. Quantity is excluded on purpose:
// stock only moves through AdjustQuantity so every change leaves a movement.
func (r *ProductRepo) Update(p domain.Product) error {
	res, err := r.db.Exec(`
  UPDATE products
  SET name = ?, sku = ?, price = ?, reorder_level = ?, updated_at = CURRENT_TIMESTAMP
  WHERE id = ?`,
		p.Name, p.SKU, p.Price.String(), p.ReorderLevel, p.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateSKU
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustQuantity applies delta atomically and records the movement in the
// same transaction. The guarded UPDATE refuses to take stock below zero.
func (r *ProductRepo) AdjustQuantity(id string, delta int, reason, actorID string) (domain.Product, error) {
	var p domain.Product

	tx, err := r.db.Beginx()
	if err != nil {
		return p, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
  UPDATE products
  SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP
  WHERE id = ? AND quantity + ? >= 0`, delta, id, delta)
	if err != nil {
		return p, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a missing row from a floor hit.
		var exists int
		if err := tx.Get(&exists, `SELECT COUNT(*) FROM products WHERE id = ?`, id); err != nil {
			return p, err
		}
		if exists == 0 {
			return p, ErrNotFound
		}
		return p, ErrInsufficientStock
	}

	if err := tx.Get(&p, `
  SELECT `+productCols+`
  FROM products
  WHERE id = ?`, id); err != nil {
		return p, err
	}

	if _, err := tx.Exec(`
  INSERT INTO stock_movements(id, product_id, delta, reason, quantity_after, actor_id)
  VALUES (?,?,?,?,?,?)`,
		uuid.NewString(), id, delta, reason, p.Quantity, nullable(actorID)); err != nil {
		return p, err
	}

	return p, tx.Commit()
}

func (r *ProductRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
