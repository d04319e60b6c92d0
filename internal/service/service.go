// Package service implements the business logic of the URL shortener:
// short code issuing, the redirect state machine and click statistics.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Callmeg0d/ShortURL/internal/entity"
)

// ErrMaxRetriesExceeded is returned when the maximum number of retries for generating a short code is exceeded.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")

// URLRepository defines the interface for working with url records at the business logic layer.
type URLRepository interface {
	// Save inserts a new shortened URL into the repository.
	// Returns entity.ErrShortCodeExists if the short code is already taken.
	Save(ctx context.Context, shortCode, originalURL string) (*entity.URL, error)

	// RetrieveByShortCode retrieves a URL by its short code.
	// Returns entity.ErrURLNotFound if the code is unknown.
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error)

	// List returns url records in insertion order with offset/limit
	// pagination and an optional is_active filter.
	List(ctx context.Context, offset, limit int, isActive *bool) ([]entity.URL, error)

	// Deactivate flips the active flag from true to false.
	// Returns entity.ErrURLNotFound for an unknown code and
	// entity.ErrURLInactive when the url is already deactivated.
	Deactivate(ctx context.Context, shortCode string) error
}

// ClickRepository defines the interface for the click ledger at the business logic layer.
type ClickRepository interface {
	// Register logs one click event and increments the click counter.
	Register(ctx context.Context, urlID int64) error

	// CountSince counts click events for the url at or after since.
	CountSince(ctx context.Context, urlID int64, since time.Time) (int64, error)

	// StatsForAllURLs returns per-window counts for every url in insertion order.
	StatsForAllURLs(ctx context.Context, hourAgo, dayAgo time.Time) ([]entity.URLStats, error)

	// StatsSortedByClicks returns per-window counts ordered descending by the chosen window.
	StatsSortedByClicks(ctx context.Context, hourAgo, dayAgo time.Time, period string) ([]entity.URLStats, error)
}

// CodeGenerator produces short codes from the fixed alphabet.
type CodeGenerator interface {
	Generate() (string, error)
}

// URLService provides methods to manage URL shortening, redirection and
// click statistics. It uses repository interfaces to interact with the
// underlying database.
type URLService struct {
	urlRepo   URLRepository
	clickRepo ClickRepository
	codeGen   CodeGenerator
	urlTTL    time.Duration
	now       func() time.Time
}

// NewURLService creates a new URLService. urlTTL bounds how long a url
// stays resolvable after creation.
func NewURLService(urlRepo URLRepository, clickRepo ClickRepository, codeGen CodeGenerator, urlTTL time.Duration) *URLService {
	return &URLService{
		urlRepo:   urlRepo,
		clickRepo: clickRepo,
		codeGen:   codeGen,
		urlTTL:    urlTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ShortenURL generates a short code for the provided original URL and stores it in the repository.
// On a short code collision it retries with a fresh code up to a maximum number of attempts.
func (s *URLService) ShortenURL(ctx context.Context, originalURL string) (*entity.URL, error) {
	const op = "service.URLService.ShortenURL"
	const maxRetries = 5

	for i := 0; i < maxRetries; i++ {
		shortCode, err := s.codeGen.Generate()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		url, err := s.urlRepo.Save(ctx, shortCode, originalURL)
		if err != nil {
			if errors.Is(err, entity.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// GetURL retrieves the url record associated with the provided short code.
func (s *URLService) GetURL(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "service.URLService.GetURL"

	url, err := s.urlRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url: %w", op, err)
	}

	return url, nil
}

// ListURLs returns one page of url records in insertion order. Pages are
// 1-based. isActive filters on the active flag when non-nil.
func (s *URLService) ListURLs(ctx context.Context, page, size int, isActive *bool) ([]entity.URL, error) {
	const op = "service.URLService.ListURLs"

	if page < 1 {
		page = 1
	}

	urls, err := s.urlRepo.List(ctx, (page-1)*size, size, isActive)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list urls: %w", op, err)
	}

	return urls, nil
}

// Redirect resolves a short code to its original URL. Checks run in
// strict order: existence, active flag, expiration. On success one click
// event is recorded and the click counter is incremented before the
// original URL is returned.
func (s *URLService) Redirect(ctx context.Context, shortCode string) (string, error) {
	const op = "service.URLService.Redirect"

	url, err := s.urlRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return "", fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	if !url.IsActive {
		return "", fmt.Errorf("%s: %w", op, entity.ErrURLInactive)
	}

	if url.Expired(s.urlTTL, s.now()) {
		return "", fmt.Errorf("%s: %w", op, entity.ErrURLExpired)
	}

	if err := s.clickRepo.Register(ctx, url.ID); err != nil {
		return "", fmt.Errorf("%s: failed to register click: %w", op, err)
	}

	return url.OriginalURL, nil
}

// DeactivateURL deactivates the url associated with the provided short code.
// Deactivation is one-way; repeating it reports entity.ErrURLInactive.
func (s *URLService) DeactivateURL(ctx context.Context, shortCode string) error {
	const op = "service.URLService.DeactivateURL"

	if err := s.urlRepo.Deactivate(ctx, shortCode); err != nil {
		return fmt.Errorf("%s: failed to deactivate url: %w", op, err)
	}

	return nil
}

// GetURLStats returns click counts over the trailing hour and day for
// the url associated with the provided short code.
func (s *URLService) GetURLStats(ctx context.Context, shortCode string) (*entity.URLStats, error) {
	const op = "service.URLService.GetURLStats"

	url, err := s.urlRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url: %w", op, err)
	}

	now := s.now()

	lastHour, err := s.clickRepo.CountSince(ctx, url.ID, now.Add(-time.Hour))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to count clicks for last hour: %w", op, err)
	}

	lastDay, err := s.clickRepo.CountSince(ctx, url.ID, now.Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to count clicks for last day: %w", op, err)
	}

	return &entity.URLStats{
		ShortCode:      url.ShortCode,
		OriginalURL:    url.OriginalURL,
		LastHourClicks: lastHour,
		LastDayClicks:  lastDay,
	}, nil
}

// GetStatsForAllURLs returns click statistics for every url in insertion
// order. Urls without clicks report zero counts.
func (s *URLService) GetStatsForAllURLs(ctx context.Context) ([]entity.URLStats, error) {
	const op = "service.URLService.GetStatsForAllURLs"

	now := s.now()

	stats, err := s.clickRepo.StatsForAllURLs(ctx, now.Add(-time.Hour), now.Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get stats: %w", op, err)
	}

	return stats, nil
}

// GetStatsSortedByClicks returns click statistics for every url ordered
// descending by the chosen window. Period must be "hour" or "day";
// anything else is rejected before touching the store.
func (s *URLService) GetStatsSortedByClicks(ctx context.Context, period string) ([]entity.URLStats, error) {
	const op = "service.URLService.GetStatsSortedByClicks"

	if period != entity.PeriodHour && period != entity.PeriodDay {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidPeriod)
	}

	now := s.now()

	stats, err := s.clickRepo.StatsSortedByClicks(ctx, now.Add(-time.Hour), now.Add(-24*time.Hour), period)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get sorted stats: %w", op, err)
	}

	return stats, nil
}
