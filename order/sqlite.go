package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists orders in a SQLite database shared with the shop
type SQLiteStore struct {
	ShopURLs
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (and migrates) the order database at dbPath
func NewSQLiteStore(dbPath, shopURL string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=20000&_txlock=immediate&_foreign_keys=on", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		ShopURLs: ShopURLs{BaseURL: shopURL},
		db:       db,
		path:     dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Printf("SQLite order store initialized at: %s", dbPath)
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		total REAL NOT NULL,
		currency TEXT NOT NULL,
		locale TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		reference TEXT NOT NULL DEFAULT '',
		paid_at DATETIME NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS order_notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		message TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_order_notes_order ON order_notes(order_id);
	`

	_, err := s.db.Exec(query)
	return err
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Create(ctx context.Context, o *Order) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("order id cannot be empty")
	}

	status := o.Status
	if status == "" {
		status = StatusPending
	}
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, total, currency, locale, status, reference, paid_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Total, o.Currency, o.Locale, string(status), o.Reference, nullTime(o.PaidAt), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create order %s: %w", o.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Order, error) {
	var (
		o      Order
		status string
		paidAt sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, total, currency, locale, status, reference, paid_at, created_at, updated_at
		FROM orders WHERE id = ?`, id,
	).Scan(&o.ID, &o.Total, &o.Currency, &o.Locale, &status, &o.Reference, &paidAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order %s: %w", id, err)
	}

	o.Status = Status(status)
	if paidAt.Valid {
		t := paidAt.Time
		o.PaidAt = &t
	}

	rows, err := s.db.QueryContext(ctx, `SELECT message, created_at FROM order_notes WHERE order_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes of order %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		o.Notes = append(o.Notes, n)
	}

	return &o, rows.Err()
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status Status, note string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`, string(status), now, id)
		if err != nil {
			return fmt.Errorf("failed to update status of order %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		if note == "" {
			return nil
		}
		return insertNote(ctx, tx, id, note, now)
	})
}

func (s *SQLiteStore) AddNote(ctx context.Context, id, note string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := ensureExists(ctx, tx, id); err != nil {
			return err
		}
		return insertNote(ctx, tx, id, note, time.Now().UTC())
	})
}

func (s *SQLiteStore) MarkPaid(ctx context.Context, id, reference string) (bool, error) {
	var applied bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `
			UPDATE orders SET status = ?, reference = ?, paid_at = ?, updated_at = ?
			WHERE id = ? AND paid_at IS NULL AND status <> ?`,
			string(StatusCompleted), reference, now, now, id, string(StatusCompleted),
		)
		if err != nil {
			return fmt.Errorf("failed to mark order %s paid: %w", id, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 1 {
			applied = true
			return nil
		}

		// nothing updated: either missing or already paid
		return ensureExists(ctx, tx, id)
	})
	return applied, err
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func ensureExists(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func insertNote(ctx context.Context, tx *sql.Tx, id, note string, at time.Time) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO order_notes (order_id, message, created_at) VALUES (?, ?, ?)`, id, note, at); err != nil {
		return fmt.Errorf("failed to add note to order %s: %w", id, err)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
