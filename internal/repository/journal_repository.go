package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuswell/counsel-api/internal/dto"
	"github.com/campuswell/counsel-api/internal/models"
)

// JournalRepository provides database access for mood and journal entries.
type JournalRepository struct {
	db *sqlx.DB
}

// NewJournalRepository creates a new instance of JournalRepository.
func NewJournalRepository(db *sqlx.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// Create inserts an entry. When the (student, client_key) pair already
// exists the stored entry is returned instead, so an offline queue replay
// is a no-op. The bool reports whether the entry was newly created.
func (r *JournalRepository) Create(ctx context.Context, entry *models.JournalEntry) (bool, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO journal_entries (id, student_id, kind, mood, body, client_key, logged_at, created_at) VALUES (:id, :student_id, :kind, :mood, :body, :client_key, :logged_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		if isUniqueViolation(err, constraintJournalClientKey) {
			existing, ferr := r.FindByClientKey(ctx, entry.StudentID, entry.ClientKey)
			if ferr != nil {
				return false, ferr
			}
			*entry = *existing
			return false, nil
		}
		return false, fmt.Errorf("create journal entry: %w", err)
	}
	return true, nil
}

// FindByClientKey returns the entry stored under an idempotency key.
func (r *JournalRepository) FindByClientKey(ctx context.Context, studentID, clientKey string) (*models.JournalEntry, error) {
	const query = `SELECT id, student_id, kind, mood, body, client_key, logged_at, created_at FROM journal_entries WHERE student_id = $1 AND client_key = $2 LIMIT 1`
	var entry models.JournalEntry
	if err := r.db.GetContext(ctx, &entry, query, studentID, clientKey); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find journal entry: %w", err)
	}
	return &entry, nil
}

// List returns the student's entries, newest first.
func (r *JournalRepository) List(ctx context.Context, studentID string, filter dto.JournalFilter) ([]models.JournalEntry, int, error) {
	baseQuery := `FROM journal_entries WHERE student_id = $1`
	args := []interface{}{studentID}

	if filter.Kind != "" {
		args = append(args, filter.Kind)
		baseQuery += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		baseQuery += fmt.Sprintf(" AND logged_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		baseQuery += fmt.Sprintf(" AND logged_at <= $%d", len(args))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT id, student_id, kind, mood, body, client_key, logged_at, created_at %s ORDER BY logged_at DESC LIMIT %d OFFSET %d", baseQuery, pageSize, offset)

	var entries []models.JournalEntry
	if err := r.db.SelectContext(ctx, &entries, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list journal entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count journal entries: %w", err)
	}

	return entries, total, nil
}
