package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"feeledger/internal/log"

	_ "modernc.org/sqlite"
)

var (
	// ErrNoProgress is returned when a named session has never been saved.
	ErrNoProgress = errors.New("no saved progress")
	// ErrEmptySessionName rejects blank session names.
	ErrEmptySessionName = errors.New("session name cannot be empty")
)

// Export request states stored in the exports table.
const (
	ExportPending = "pending"
	ExportDone    = "done"
	ExportError   = "error"
	// ExportFailed is terminal: the request can never succeed and is not
	// retried.
	ExportFailed = "failed"
)

type (
	// SessionInfo describes one saved session without its cells.
	SessionInfo struct {
		Name    string
		Rows    int
		SavedAt time.Time
	}

	// ExportRecord is the persisted state of one asynchronous export.
	ExportRecord struct {
		RequestID string
		Session   string
		Status    string
		Rows      int
		Error     string
		UpdatedAt time.Time
	}
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serialises writers; sqlite would otherwise
	// return SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveProgress replaces the named session with rows in one transaction.
// Rows may be ragged; every row is stored with the widest row's column
// count so that trailing empty cells survive a round trip.
func (r *SQLiteRepository) SaveProgress(ctx context.Context, name string, rows [][]string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptySessionName
	}

	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_rows WHERE session = ?`, name); err != nil {
		return fmt.Errorf("clear session rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (name, column_count, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET column_count = excluded.column_count, saved_at = excluded.saved_at`,
		name, cols, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO session_rows (session, row_index, col_index, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		for j := 0; j < cols; j++ {
			value := ""
			if j < len(row) {
				value = row[j]
			}
			if _, err := stmt.ExecContext(ctx, name, i, j, value); err != nil {
				return fmt.Errorf("insert cell (%d,%d): %w", i, j, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Progress saved",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpSave,
		log.FieldSession, name,
		log.FieldRows, len(rows))
	return nil
}

// LoadProgress returns the rows of the named session in their saved order.
func (r *SQLiteRepository) LoadProgress(ctx context.Context, name string) ([][]string, error) {
	name = strings.TrimSpace(name)
	var cols int
	err := r.db.QueryRowContext(ctx, `SELECT column_count FROM sessions WHERE name = ?`, name).Scan(&cols)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %q: %w", name, ErrNoProgress)
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT row_index, col_index, value FROM session_rows
		 WHERE session = ? ORDER BY row_index, col_index`, name)
	if err != nil {
		return nil, fmt.Errorf("query session rows: %w", err)
	}
	defer rows.Close()

	var result [][]string
	for rows.Next() {
		var ri, ci int
		var value string
		if err := rows.Scan(&ri, &ci, &value); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		for len(result) <= ri {
			result = append(result, make([]string, cols))
		}
		if ci < cols {
			result[ri][ci] = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}

	slog.InfoContext(ctx, "Progress loaded",
		log.FieldComponent, log.ComponentStorage,
		log.FieldOperation, log.OpLoad,
		log.FieldSession, name,
		log.FieldRows, len(result))
	return result, nil
}

// ListProgress returns all saved sessions, most recent first.
func (r *SQLiteRepository) ListProgress(ctx context.Context) ([]SessionInfo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, saved_at,
		        (SELECT COUNT(DISTINCT row_index) FROM session_rows WHERE session = sessions.name)
		 FROM sessions
		 ORDER BY saved_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var s SessionInfo
		if err := rows.Scan(&s.Name, &s.SavedAt, &s.Rows); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeleteProgress removes the named session and its rows.
func (r *SQLiteRepository) DeleteProgress(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_rows WHERE session = ?`, name); err != nil {
		return fmt.Errorf("delete session rows: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete %q: %w", name, ErrNoProgress)
	}
	return tx.Commit()
}

// CreateExport records a pending export request for session.
func (r *SQLiteRepository) CreateExport(ctx context.Context, requestID, session string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exports (request_id, session, status) VALUES (?, ?, ?)
		 ON CONFLICT(request_id) DO NOTHING`,
		requestID, session, ExportPending)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	return nil
}

// MarkExportDone records a successful export of rows rows.
func (r *SQLiteRepository) MarkExportDone(ctx context.Context, requestID string, rows int) error {
	return r.updateExport(ctx, requestID, ExportDone, rows, "")
}

// MarkExportError records a failed export attempt.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, requestID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return r.updateExport(ctx, requestID, ExportError, 0, msg)
}

// MarkExportFailed records a request that can never succeed, such as one
// for a session that does not exist.
func (r *SQLiteRepository) MarkExportFailed(ctx context.Context, requestID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return r.updateExport(ctx, requestID, ExportFailed, 0, msg)
}

func (r *SQLiteRepository) updateExport(ctx context.Context, requestID, status string, rows int, msg string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE exports SET status = ?, rows = ?, error = ?, updated_at = ? WHERE request_id = ?`,
		status, rows, msg, time.Now().UTC(), requestID)
	if err != nil {
		return fmt.Errorf("update export %s: %w", requestID, err)
	}
	return nil
}

// GetExport returns the stored state of one export request.
func (r *SQLiteRepository) GetExport(ctx context.Context, requestID string) (*ExportRecord, error) {
	var e ExportRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT request_id, session, status, rows, error, updated_at FROM exports WHERE request_id = ?`,
		requestID).Scan(&e.RequestID, &e.Session, &e.Status, &e.Rows, &e.Error, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get export %s: %w", requestID, err)
	}
	return &e, nil
}

// PendingExports returns up to limit exports that are still pending or
// failed with a retryable error, oldest first. Done and failed exports are
// never returned.
func (r *SQLiteRepository) PendingExports(ctx context.Context, limit int) ([]ExportRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT request_id, session, status, rows, error, updated_at FROM exports
		 WHERE status != ? ORDER BY created_at, request_id LIMIT ?`,
		ExportDone, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending exports: %w", err)
	}
	defer rows.Close()

	var out []ExportRecord
	for rows.Next() {
		var e ExportRecord
		if err := rows.Scan(&e.RequestID, &e.Session, &e.Status, &e.Rows, &e.Error, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
