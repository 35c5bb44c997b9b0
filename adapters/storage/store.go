// Package storage persists saved cost reports. A saved report is a
// named, timestamped point-in-time snapshot: it never changes when
// underlying ingredient prices later change.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"recipe-cost/core/types"
	errs "recipe-cost/internal/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SavedReport is one persisted report snapshot
type SavedReport struct {
	ID        types.SavedReportID `json:"id"`
	Name      string              `json:"name"`
	RecipeID  types.RecipeID      `json:"recipe_id"`
	CreatedAt time.Time           `json:"created_at"`
	Report    *types.CostReport   `json:"report"`
}

// Store is a SQLite-backed report sink implementing types.ReportSink.
// Rows are append-only; re-saving under an existing name creates a new
// snapshot rather than replacing the old one.
type Store struct {
	db *sql.DB
}

// Open opens the report database, sets pragmas, and runs migrations
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.Storage("open report database", err)
	}

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, errs.Storage("set sqlite pragmas", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, errs.Storage("set goose dialect", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, errs.Storage("run report store migrations", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReport implements types.ReportSink
func (s *Store) SaveReport(ctx context.Context, report *types.CostReport, name string) (types.SavedReportID, error) {
	if report == nil {
		return "", errs.Input("nil report")
	}
	if name == "" {
		return "", errs.Input("saved report needs a name")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return "", errs.Storage("encode report", err)
	}

	id := types.SavedReportID(uuid.NewString())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saved_reports (id, name, recipe_id, created_at, report)
		VALUES (?, ?, ?, ?, ?)
	`, string(id), name, string(report.RecipeID), time.Now().UTC().Format(time.RFC3339Nano), payload)
	if err != nil {
		return "", errs.Storage("insert saved report", err)
	}

	return id, nil
}

// Get retrieves a saved report by id
func (s *Store) Get(ctx context.Context, id types.SavedReportID) (*SavedReport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, recipe_id, created_at, report
		FROM saved_reports WHERE id = ?
	`, string(id))

	saved, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("saved report", string(id))
	}
	if err != nil {
		return nil, errs.Storage("read saved report", err)
	}
	return saved, nil
}

// List returns saved report metadata, newest first. The report payload
// is omitted; use Get for the full snapshot.
func (s *Store) List(ctx context.Context) ([]SavedReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, recipe_id, created_at
		FROM saved_reports ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, errs.Storage("list saved reports", err)
	}
	defer rows.Close()

	var result []SavedReport
	for rows.Next() {
		var r SavedReport
		var id, recipeID, createdAt string
		if err := rows.Scan(&id, &r.Name, &recipeID, &createdAt); err != nil {
			return nil, errs.Storage("scan saved report", err)
		}
		r.ID = types.SavedReportID(id)
		r.RecipeID = types.RecipeID(recipeID)
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		result = append(result, r)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*SavedReport, error) {
	var r SavedReport
	var id, recipeID, createdAt string
	var payload []byte
	if err := row.Scan(&id, &r.Name, &recipeID, &createdAt, &payload); err != nil {
		return nil, err
	}
	r.ID = types.SavedReportID(id)
	r.RecipeID = types.RecipeID(recipeID)
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	var report types.CostReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, err
	}
	r.Report = &report
	return &r, nil
}
