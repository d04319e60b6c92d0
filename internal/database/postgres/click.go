package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Callmeg0d/ShortURL/internal/entity"
)

type urlStatsRecord struct {
	ShortURL       string `db:"short_url"`
	OriginalURL    string `db:"original_url"`
	LastHourClicks int64  `db:"last_hour_clicks"`
	LastDayClicks  int64  `db:"last_day_clicks"`
}

func (r *urlStatsRecord) toEntity() *entity.URLStats {
	return &entity.URLStats{
		ShortCode:      r.ShortURL,
		OriginalURL:    r.OriginalURL,
		LastHourClicks: r.LastHourClicks,
		LastDayClicks:  r.LastDayClicks,
	}
}

// statsQuery joins every url with its per-window click counts. Counting
// both windows in one grouped pass avoids a query per url.
const statsQuery = `SELECT u.short_url, u.original_url,
		COALESCE(c.last_hour_clicks, 0) AS last_hour_clicks,
		COALESCE(c.last_day_clicks, 0) AS last_day_clicks
	FROM urls u
	LEFT JOIN (
		SELECT url_id,
			COUNT(*) FILTER (WHERE clicked_at >= $1) AS last_hour_clicks,
			COUNT(*) FILTER (WHERE clicked_at >= $2) AS last_day_clicks
		FROM click_logs
		GROUP BY url_id
	) c ON c.url_id = u.id`

// ClickRepository is the append-only ledger of click events. Events are
// never updated or deleted.
type ClickRepository struct {
	db *sqlx.DB
}

func NewClickRepository(db *sqlx.DB) *ClickRepository {
	return &ClickRepository{
		db: db,
	}
}

// Register logs one click event and increments the denormalized counter
// in a single transaction. The increment runs server-side, so concurrent
// redirects on the same url never lose counts.
func (r *ClickRepository) Register(ctx context.Context, urlID int64) error {
	const op = "database.postgres.ClickRepository.Register"

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `INSERT INTO click_logs(url_id) VALUES ($1)`, urlID); err != nil {
		return fmt.Errorf("%s: failed to log click: %w", op, err)
	}

	query := `UPDATE urls
		SET clicks = clicks + 1
		WHERE id = $1`

	if _, err := tx.ExecContext(ctx, query, urlID); err != nil {
		return fmt.Errorf("%s: failed to increment clicks: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return nil
}

// CountSince returns the number of click events for the url with
// clicked_at at or after since.
func (r *ClickRepository) CountSince(ctx context.Context, urlID int64, since time.Time) (int64, error) {
	const op = "database.postgres.ClickRepository.CountSince"

	var count int64
	query := `SELECT COUNT(*) FROM click_logs WHERE url_id = $1 AND clicked_at >= $2`

	if err := r.db.GetContext(ctx, &count, query, urlID, since); err != nil {
		return 0, fmt.Errorf("%s: failed to count clicks: %w", op, err)
	}

	return count, nil
}

// StatsForAllURLs returns per-window click counts for every url in
// insertion order. Urls with no clicks report zero counts.
func (r *ClickRepository) StatsForAllURLs(ctx context.Context, hourAgo, dayAgo time.Time) ([]entity.URLStats, error) {
	const op = "database.postgres.ClickRepository.StatsForAllURLs"

	var recs []urlStatsRecord
	query := statsQuery + ` ORDER BY u.id`

	if err := r.db.SelectContext(ctx, &recs, query, hourAgo, dayAgo); err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	stats := make([]entity.URLStats, 0, len(recs))
	for _, rec := range recs {
		stats = append(stats, *rec.toEntity())
	}

	return stats, nil
}

// StatsSortedByClicks returns the same counts as StatsForAllURLs ordered
// descending by the chosen window. Tie order is unspecified.
func (r *ClickRepository) StatsSortedByClicks(ctx context.Context, hourAgo, dayAgo time.Time, period string) ([]entity.URLStats, error) {
	const op = "database.postgres.ClickRepository.StatsSortedByClicks"

	var query string
	switch period {
	case entity.PeriodHour:
		query = statsQuery + ` ORDER BY last_hour_clicks DESC`
	case entity.PeriodDay:
		query = statsQuery + ` ORDER BY last_day_clicks DESC`
	default:
		return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidPeriod)
	}

	var recs []urlStatsRecord
	if err := r.db.SelectContext(ctx, &recs, query, hourAgo, dayAgo); err != nil {
		return nil, fmt.Errorf("%s: failed to get sorted url stats: %w", op, err)
	}

	stats := make([]entity.URLStats, 0, len(recs))
	for _, rec := range recs {
		stats = append(stats, *rec.toEntity())
	}

	return stats, nil
}
