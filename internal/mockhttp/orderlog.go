package mockhttp

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// OrderRecord is one submitted order as the log stored it.
type OrderRecord struct {
	ID         int64     `db:"id" json:"id"`
	ReceivedAt time.Time `db:"received_at" json:"receivedAt"`
	Route      string    `db:"route" json:"route"`
	Body       string    `db:"body" json:"body"`
}

// OrderLog persists every order the mock accepted, so a test run (or a
// developer poking the standalone server) can review what the front-end
// actually submitted. Backed by SQLite; ":memory:" works for tests.
type OrderLog struct {
	db *sqlx.DB
}

const orderLogSchema = `
CREATE TABLE IF NOT EXISTS orders (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	received_at TIMESTAMP NOT NULL,
	route       TEXT NOT NULL,
	body        TEXT NOT NULL
);`

// OpenOrderLog opens (creating if needed) the order log at path.
func OpenOrderLog(path string) (*OrderLog, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open order log: %w", err)
	}
	// SQLite serializes writers anyway, and a second pooled connection to a
	// ":memory:" path would see its own empty database.
	db.SetMaxOpenConns(1)
	// journal_mode may not be supported for in-memory databases; ignore errors.
	_, _ = db.Exec(`PRAGMA journal_mode=WAL`)
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure order log: %w", err)
	}
	if _, err := db.Exec(orderLogSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create order log schema: %w", err)
	}
	return &OrderLog{db: db}, nil
}

// Record appends one accepted order.
func (l *OrderLog) Record(ctx context.Context, route string, body []byte) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO orders (received_at, route, body) VALUES (?, ?, ?)`,
		time.Now().UTC(), route, string(body))
	if err != nil {
		return fmt.Errorf("record order: %w", err)
	}
	return nil
}

// Recent returns up to limit orders, newest first.
func (l *OrderLog) Recent(ctx context.Context, limit int) ([]OrderRecord, error) {
	records := []OrderRecord{}
	err := l.db.SelectContext(ctx, &records,
		`SELECT id, received_at, route, body FROM orders ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return records, nil
}

// Count returns the total number of recorded orders.
func (l *OrderLog) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := l.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM orders`); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// Close releases the underlying database handle.
func (l *OrderLog) Close() error {
	return l.db.Close()
}
