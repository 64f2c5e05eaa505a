package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"builder-platform/internal/theme"
)

// Record repository errors.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidRecord  = errors.New("invalid record")
)

const maxTitleLength = 200

// Record is a piece of expert content filed under a domain.
type Record struct {
	ID        string       `json:"id"`
	Domain    theme.Domain `json:"domain"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// RecordRepository handles record persistence.
type RecordRepository struct {
	db  *DB
	now func() time.Time
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create stores rec, assigning ID and timestamps.
func (r *RecordRepository) Create(ctx context.Context, rec *Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}

	now := r.now()
	rec.ID = uuid.NewString()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO records (id, domain, title, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Domain.String(), rec.Title, rec.Body, formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// Get returns the record with id.
func (r *RecordRepository) Get(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, domain, title, body, created_at, updated_at FROM records WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns records newest first, optionally filtered by domain.
func (r *RecordRepository) List(ctx context.Context, domain *theme.Domain) ([]*Record, error) {
	query := `SELECT id, domain, title, body, created_at, updated_at FROM records`
	var args []any
	if domain != nil {
		query += ` WHERE domain = ?`
		args = append(args, domain.String())
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Update replaces domain, title and body of an existing record.
func (r *RecordRepository) Update(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" {
		return ErrInvalidRecord
	}
	if err := validateRecord(rec); err != nil {
		return err
	}

	rec.UpdatedAt = r.now()
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET domain = ?, title = ?, body = ?, updated_at = ? WHERE id = ?`,
		rec.Domain.String(), rec.Title, rec.Body, formatTime(rec.UpdatedAt), rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}

	stored, err := r.Get(ctx, rec.ID)
	if err != nil {
		return err
	}
	*rec = *stored
	return nil
}

// Delete removes the record with id.
func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return expectOneRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec                  Record
		domain               string
		createdAt, updatedAt string
	)
	if err := row.Scan(&rec.ID, &domain, &rec.Title, &rec.Body, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	d, err := theme.ParseDomain(domain)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	rec.Domain = d

	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("record %s created_at: %w", rec.ID, err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("record %s updated_at: %w", rec.ID, err)
	}
	return &rec, nil
}

func validateRecord(rec *Record) error {
	if rec == nil {
		return ErrInvalidRecord
	}
	rec.Title = strings.TrimSpace(rec.Title)
	if rec.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRecord)
	}
	if len(rec.Title) > maxTitleLength {
		return fmt.Errorf("%w: title exceeds %d bytes", ErrInvalidRecord, maxTitleLength)
	}
	if _, err := rec.Domain.MarshalText(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
