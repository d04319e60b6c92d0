// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a shortened URL, along with its
// click statistics and any relevant error definitions.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrShortCodeExists is returned when attempting to create a URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when a URL with the specified short code cannot be found.
	ErrURLNotFound = errors.New("url not found")
	// ErrURLInactive is returned when a deactivated URL is used for a redirect
	// or deactivated a second time.
	ErrURLInactive = errors.New("url is inactive")
	// ErrURLExpired is returned when a URL is past its expiration window.
	ErrURLExpired = errors.New("url has expired")
	// ErrInvalidPeriod is returned when a stats period other than "hour" or "day" is requested.
	ErrInvalidPeriod = errors.New("invalid period: use 'hour' or 'day'")
)

// Stats periods accepted by the sorted statistics queries.
const (
	PeriodHour = "hour"
	PeriodDay  = "day"
)

// URL represents a shortened URL.
type URL struct {
	ID          int64     // ID is the unique identifier of the URL in the database.
	ShortCode   string    // ShortCode is the generated code used to shorten the original URL.
	OriginalURL string    // OriginalURL is the full URL that the short code resolves to.
	Clicks      int64     // Clicks is a denormalized count of registered clicks.
	IsActive    bool      // IsActive is false once the URL has been deactivated. The flag is one-way.
	CreatedAt   time.Time // CreatedAt is the timestamp when the URL was created.
}

// Expired reports whether the URL is past its lifetime at the given moment.
// Expiration is computed, never stored.
func (u *URL) Expired(ttl time.Duration, now time.Time) bool {
	return now.After(u.CreatedAt.Add(ttl))
}

// URLStats contains click counts for a shortened URL over trailing windows.
type URLStats struct {
	ShortCode      string // ShortCode identifies the URL the counts belong to.
	OriginalURL    string // OriginalURL is the full URL that the short code resolves to.
	LastHourClicks int64  // LastHourClicks is the number of clicks in the trailing hour.
	LastDayClicks  int64  // LastDayClicks is the number of clicks in the trailing day.
}
