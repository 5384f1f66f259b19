// Package store persists pricing scenarios and their products in SQLite.
// The server stores raw inputs only; derived prices are never written here.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when the referenced scenario does not exist.
	ErrNotFound = errors.New("scenario not found")
	// ErrNameTaken is returned when a write would violate the unique
	// scenario name constraint.
	ErrNameTaken = errors.New("scenario name already exists")
)

// Scenario is a named pricing context holding a margin, an exchange rate,
// and a set of products.
type Scenario struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Margin     float64   `json:"margin"`
	DollarRate float64   `json:"dollar_rate"`
	CreatedAt  string    `json:"createdAt"`
	Products   []Product `json:"products"`
}

// Product is a line item with a vendor base cost, owned by one scenario.
type Product struct {
	ID         int64   `json:"id"`
	ScenarioID int64   `json:"scenario_id"`
	Name       string  `json:"name"`
	BaseValue  float64 `json:"base_value"`
}

// ProductInput carries the client-provided fields of a product; identifiers
// are always assigned by the store.
type ProductInput struct {
	Name      string
	BaseValue float64
}

// Store provides scenario persistence over an open SQLite handle.
type Store struct {
	db *sql.DB
}

// New returns a Store using db, which must have foreign_keys enabled.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// List returns all scenarios ordered by name ascending, without products.
func (s *Store) List(ctx context.Context) ([]Scenario, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, margin, dollar_rate, created_at
		FROM scenarios
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := make([]Scenario, 0)
	for rows.Next() {
		var sc Scenario
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Margin, &sc.DollarRate, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		scenarios = append(scenarios, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}

	return scenarios, nil
}

// Get returns the scenario with its products, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (*Scenario, error) {
	var sc Scenario
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, margin, dollar_rate, created_at
		FROM scenarios
		WHERE id = ?
	`, id).Scan(&sc.ID, &sc.Name, &sc.Margin, &sc.DollarRate, &sc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query scenario %d: %w", id, err)
	}

	sc.Products, err = s.listProducts(ctx, id)
	if err != nil {
		return nil, err
	}

	return &sc, nil
}

// Create inserts a scenario and its products in a single transaction and
// returns the stored record with assigned identifiers. A duplicate name
// surfaces as ErrNameTaken.
func (s *Store) Create(ctx context.Context, name string, margin, dollarRate float64, products []ProductInput) (*Scenario, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create transaction: %w", err)
	}

	id, err := insertScenario(ctx, tx, name, margin, dollarRate)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := insertProducts(ctx, tx, id, products); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create transaction: %w", err)
	}

	return s.Get(ctx, id)
}

// Replace updates the scenario fields, wipes its products and inserts the
// new list, all inside one transaction so any failure leaves prior state.
func (s *Store) Replace(ctx context.Context, id int64, name string, margin, dollarRate float64, products []ProductInput) (*Scenario, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin replace transaction: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE scenarios
		SET name = ?, margin = ?, dollar_rate = ?
		WHERE id = ?
	`, name, margin, dollarRate, id)
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("update scenario %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("update scenario %d: %w", id, err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return nil, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE scenario_id = ?`, id); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("delete products of scenario %d: %w", id, err)
	}

	if err := insertProducts(ctx, tx, id, products); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit replace transaction: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes the scenario; the foreign key cascade removes its
// products. Returns the number of scenario rows deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete scenario %d: %w", id, err)
	}

	changes, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete scenario %d: %w", id, err)
	}

	return changes, nil
}

// Duplicate deep-copies the scenario under a fresh name and returns the new
// id. Copy names are deterministic: "name (copy)", then "name (copy 2)" and
// so on, the first free candidate winning.
func (s *Store) Duplicate(ctx context.Context, id int64) (int64, error) {
	original, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin duplicate transaction: %w", err)
	}

	copyName, err := freeCopyName(ctx, tx, original.Name)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	newID, err := insertScenario(ctx, tx, copyName, original.Margin, original.DollarRate)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	inputs := make([]ProductInput, len(original.Products))
	for i, p := range original.Products {
		inputs[i] = ProductInput{Name: p.Name, BaseValue: p.BaseValue}
	}
	if err := insertProducts(ctx, tx, newID, inputs); err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit duplicate transaction: %w", err)
	}

	return newID, nil
}

func (s *Store) listProducts(ctx context.Context, scenarioID int64) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario_id, name, base_value
		FROM products
		WHERE scenario_id = ?
		ORDER BY id ASC
	`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("query products of scenario %d: %w", scenarioID, err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.ScenarioID, &p.Name, &p.BaseValue); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func insertScenario(ctx context.Context, tx *sql.Tx, name string, margin, dollarRate float64) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO scenarios (name, margin, dollar_rate)
		VALUES (?, ?, ?)
	`, name, margin, dollarRate)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrNameTaken
		}
		return 0, fmt.Errorf("insert scenario: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read scenario id: %w", err)
	}

	return id, nil
}

func insertProducts(ctx context.Context, tx *sql.Tx, scenarioID int64, products []ProductInput) error {
	for _, p := range products {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO products (scenario_id, name, base_value)
			VALUES (?, ?, ?)
		`, scenarioID, p.Name, p.BaseValue); err != nil {
			return fmt.Errorf("insert product %q: %w", p.Name, err)
		}
	}
	return nil
}

func freeCopyName(ctx context.Context, tx *sql.Tx, base string) (string, error) {
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (copy)", base)
		if n > 1 {
			candidate = fmt.Sprintf("%s (copy %d)", base, n)
		}

		var taken bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM scenarios WHERE name = ? LIMIT 1)
		`, candidate).Scan(&taken)
		if err != nil {
			return "", fmt.Errorf("check copy name %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
}

// isUniqueViolation reports whether err is a SQLite unique constraint
// failure, so callers never have to match on driver message text.
func isUniqueViolation(err error) bool {
	var driverErr *sqlite.Error
	if !errors.As(err, &driverErr) {
		return false
	}
	code := driverErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT
}
