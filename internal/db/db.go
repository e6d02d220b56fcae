package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/centromex/request-relay-bot/internal/models"
)

var (
	ErrNotFound       = errors.New("request not found")
	ErrAlreadyDecided = errors.New("request already decided")
)

// DB is the decision ledger. It is backed by an in-memory SQLite database, so
// nothing survives a restart.
type DB struct {
	conn *sql.DB
}

// New opens a fresh in-memory ledger.
func New() (*DB, error) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every new connection to :memory: is a separate database
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		requester_id INTEGER NOT NULL,
		requester_handle TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		year TEXT NOT NULL DEFAULT '',
		quality TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT '',
		raw_text TEXT NOT NULL,
		admin_chat_id INTEGER NOT NULL,
		admin_message_id INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		decided_by INTEGER,
		received_at DATETIME NOT NULL,
		deadline_at DATETIME NOT NULL,
		decided_at DATETIME
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_admin_message ON requests(admin_chat_id, admin_message_id);
	CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// CreateRequest records a request whose admin notice was delivered.
func (db *DB) CreateRequest(ctx context.Context, req models.Request) error {
	status := req.Status
	if status == "" {
		status = models.StatusPending
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO requests (id, requester_id, requester_handle, name, year, quality, language,
		                       raw_text, admin_chat_id, admin_message_id, status, received_at, deadline_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.Requester.ID, req.Requester.Handle,
		req.Fields.Name, req.Fields.Year, req.Fields.Quality, req.Fields.Language,
		req.RawText, req.AdminChatID, req.AdminMessageID, status,
		req.ReceivedAt.UTC(), req.Deadline.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert request %s: %w", req.ID, err)
	}
	return nil
}

// GetByAdminMessage looks a request up by the admin notice that carries its buttons.
func (db *DB) GetByAdminMessage(ctx context.Context, chatID int64, messageID int) (*models.Request, error) {
	return getByAdminMessage(ctx, db.conn, chatID, messageID)
}

// Decide moves a pending request to the terminal status. A request that is
// already decided is returned together with ErrAlreadyDecided.
func (db *DB) Decide(ctx context.Context, chatID int64, messageID int, status models.RequestStatus, actorID int64, at time.Time) (*models.Request, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	req, err := getByAdminMessage(ctx, tx, chatID, messageID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.StatusPending {
		return req, ErrAlreadyDecided
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE requests SET status = ?, decided_by = ?, decided_at = ?
		 WHERE id = ? AND status = ?`,
		status, actorID, at.UTC(), req.ID, models.StatusPending,
	)
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return req, ErrAlreadyDecided
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	decidedAt := at.UTC()
	req.Status = status
	req.DecidedBy = actorID
	req.DecidedAt = &decidedAt
	return req, nil
}

// PurgeOldRequests deletes decided requests whose decision is older than cutoff.
func (db *DB) PurgeOldRequests(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM requests WHERE status != ? AND decided_at < ?`,
		models.StatusPending, cutoff.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountByStatus returns the number of ledger rows per status.
func (db *DB) CountByStatus(ctx context.Context) (map[models.RequestStatus]int, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT status, COUNT(*) FROM requests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.RequestStatus]int)
	for rows.Next() {
		var status models.RequestStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getByAdminMessage(ctx context.Context, q queryer, chatID int64, messageID int) (*models.Request, error) {
	var req models.Request
	var decidedBy sql.NullInt64
	var decidedAt sql.NullTime

	err := q.QueryRowContext(ctx,
		`SELECT id, requester_id, requester_handle, name, year, quality, language, raw_text,
		        admin_chat_id, admin_message_id, status, decided_by, received_at, deadline_at, decided_at
		 FROM requests WHERE admin_chat_id = ? AND admin_message_id = ?`, chatID, messageID,
	).Scan(
		&req.ID, &req.Requester.ID, &req.Requester.Handle,
		&req.Fields.Name, &req.Fields.Year, &req.Fields.Quality, &req.Fields.Language, &req.RawText,
		&req.AdminChatID, &req.AdminMessageID, &req.Status, &decidedBy,
		&req.ReceivedAt, &req.Deadline, &decidedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if decidedBy.Valid {
		req.DecidedBy = decidedBy.Int64
	}
	if decidedAt.Valid {
		req.DecidedAt = &decidedAt.Time
	}

	return &req, nil
}
