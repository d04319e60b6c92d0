package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Callmeg0d/ShortURL/internal/entity"
)

type urlRecord struct {
	ID          int64     `db:"id"`
	OriginalURL string    `db:"original_url"`
	ShortURL    string    `db:"short_url"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	Clicks      int64     `db:"clicks"`
}

func (r *urlRecord) toEntity() *entity.URL {
	return &entity.URL{
		ID:          r.ID,
		ShortCode:   r.ShortURL,
		OriginalURL: r.OriginalURL,
		Clicks:      r.Clicks,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
	}
}

// URLRepository owns url records and enforces short code uniqueness
// through the unique index on short_url.
type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{
		db: db,
	}
}

// Save inserts a new url record with active=true and zero clicks.
// Returns entity.ErrShortCodeExists on a short code collision.
func (r *URLRepository) Save(ctx context.Context, shortCode, originalURL string) (*entity.URL, error) {
	const op = "database.postgres.URLRepository.Save"

	rec := new(urlRecord)
	query := `INSERT INTO urls(short_url, original_url)
		VALUES ($1, $2)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, shortCode, originalURL)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create url record: %w", op, err)
	}

	return rec.toEntity(), nil
}

// RetrieveByShortCode returns the url record for the given short code
// without side effects.
func (r *URLRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "database.postgres.URLRepository.RetrieveByShortCode"

	rec := new(urlRecord)
	query := `SELECT * FROM urls WHERE short_url = $1`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.toEntity(), nil
}

// List returns url records in insertion order. The is_active filter is
// applied only when isActive is non-nil.
func (r *URLRepository) List(ctx context.Context, offset, limit int, isActive *bool) ([]entity.URL, error) {
	const op = "database.postgres.URLRepository.List"

	query := `SELECT * FROM urls`
	args := make([]any, 0, 3)

	if isActive != nil {
		query += ` WHERE is_active = $1`
		args = append(args, *isActive)
	}

	query += fmt.Sprintf(` ORDER BY id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var recs []urlRecord
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to list url records: %w", op, err)
	}

	urls := make([]entity.URL, 0, len(recs))
	for _, rec := range recs {
		urls = append(urls, *rec.toEntity())
	}

	return urls, nil
}

// Deactivate flips the active flag from true to false. The outcome is
// three-way: entity.ErrURLNotFound for an unknown code,
// entity.ErrURLInactive when the flag is already false, nil on success.
func (r *URLRepository) Deactivate(ctx context.Context, shortCode string) error {
	const op = "database.postgres.URLRepository.Deactivate"

	var isActive bool
	err := r.db.GetContext(ctx, &isActive, `SELECT is_active FROM urls WHERE short_url = $1`, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	if !isActive {
		return fmt.Errorf("%s: %w", op, entity.ErrURLInactive)
	}

	query := `UPDATE urls
		SET is_active = FALSE
		WHERE short_url = $1 AND is_active = TRUE`

	res, err := r.db.ExecContext(ctx, query, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to deactivate url record: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}

	// A concurrent deactivation may have won between the check and the update.
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, entity.ErrURLInactive)
	}

	return nil
}
