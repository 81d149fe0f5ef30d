// Package storage is the legacy, locally-owned data path: a SQLite-backed
// family repository kept alongside the backend API while routes migrate.
// Deleted rows carry an explicit state column; call sites never compare
// timestamps to decide liveness.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Family states. A deleted family stays in the table but is excluded from
// every read.
const (
	StateActive  = "active"
	StateDeleted = "deleted"
)

var ErrFamilyNotFound = errors.New("family not found")

// FamilyRecord is a row of the legacy families table.
type FamilyRecord struct {
	ID        int64
	UUID      string
	Name      string
	OwnerID   string
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open opens (and creates, if needed) the local SQLite database and runs the
// embedded migrations.
func Open(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

type FamilyRepository struct {
	db *sql.DB
}

func NewFamilyRepository(db *sql.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

func (r *FamilyRepository) Create(ctx context.Context, name, ownerID string) (FamilyRecord, error) {
	now := time.Now().UTC()
	rec := FamilyRecord{
		UUID:      uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		State:     StateActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO families (uuid, name, owner_id, state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.UUID, rec.Name, rec.OwnerID, rec.State, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return FamilyRecord{}, fmt.Errorf("insert family: %w", err)
	}
	rec.ID, _ = res.LastInsertId()

	slog.InfoContext(ctx, "Family saved to SQLite",
		"id", rec.ID,
		"uuid", rec.UUID,
		"name", rec.Name)

	return rec, nil
}

func (r *FamilyRepository) GetByUUID(ctx context.Context, familyUUID string) (FamilyRecord, error) {
	var rec FamilyRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT id, uuid, name, owner_id, state, created_at, updated_at
		 FROM families WHERE uuid = ? AND state = ?`,
		familyUUID, StateActive).
		Scan(&rec.ID, &rec.UUID, &rec.Name, &rec.OwnerID, &rec.State, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return FamilyRecord{}, ErrFamilyNotFound
	}
	if err != nil {
		return FamilyRecord{}, fmt.Errorf("get family %s: %w", familyUUID, err)
	}
	return rec, nil
}

func (r *FamilyRepository) ListByOwner(ctx context.Context, ownerID string) ([]FamilyRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, uuid, name, owner_id, state, created_at, updated_at
		 FROM families WHERE owner_id = ? AND state = ? ORDER BY created_at`,
		ownerID, StateActive)
	if err != nil {
		return nil, fmt.Errorf("list families for %s: %w", ownerID, err)
	}
	defer rows.Close()

	var out []FamilyRecord
	for rows.Next() {
		var rec FamilyRecord
		if err := rows.Scan(&rec.ID, &rec.UUID, &rec.Name, &rec.OwnerID, &rec.State, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan family row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *FamilyRepository) Rename(ctx context.Context, familyUUID, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE families SET name = ?, updated_at = ? WHERE uuid = ? AND state = ?`,
		name, time.Now().UTC(), familyUUID, StateActive)
	if err != nil {
		return fmt.Errorf("rename family %s: %w", familyUUID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFamilyNotFound
	}
	return nil
}

// SoftDelete flips the family to the deleted state. The row is kept for
// audit; reads filter on state.
func (r *FamilyRepository) SoftDelete(ctx context.Context, familyUUID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE families SET state = ?, updated_at = ? WHERE uuid = ? AND state = ?`,
		StateDeleted, time.Now().UTC(), familyUUID, StateActive)
	if err != nil {
		return fmt.Errorf("soft delete family %s: %w", familyUUID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFamilyNotFound
	}

	slog.InfoContext(ctx, "Family soft-deleted", "uuid", familyUUID)
	return nil
}
