package http

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Callmeg0d/ShortURL/internal/entity"
)

const statusError = "error"

// createURLRequest represents the structure for a request to shorten a URL.
type createURLRequest struct {
	OriginalURL string `json:"original_url" validate:"required,url"`
}

// urlResponse represents the structure for a response containing a url record.
type urlResponse struct {
	ID          int64     `json:"id"`
	OriginalURL string    `json:"original_url"`
	ShortURL    string    `json:"short_url"`
	Clicks      int64     `json:"clicks"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// toURLResponse converts an entity.URL to a urlResponse.
func toURLResponse(url *entity.URL) urlResponse {
	return urlResponse{
		ID:          url.ID,
		OriginalURL: url.OriginalURL,
		ShortURL:    url.ShortCode,
		Clicks:      url.Clicks,
		IsActive:    url.IsActive,
		CreatedAt:   url.CreatedAt,
	}
}

func toURLResponses(urls []entity.URL) []urlResponse {
	resps := make([]urlResponse, 0, len(urls))
	for i := range urls {
		resps = append(resps, toURLResponse(&urls[i]))
	}
	return resps
}

// redirectResponse carries the original URL a short code resolves to.
type redirectResponse struct {
	OriginalURL string `json:"original_url"`
}

// urlStatsResponse represents per-window click statistics for a url.
type urlStatsResponse struct {
	ShortURL       string `json:"short_url"`
	OriginalURL    string `json:"original_url"`
	LastHourClicks int64  `json:"last_hour_clicks"`
	LastDayClicks  int64  `json:"last_day_clicks"`
}

// toURLStatsResponse converts an entity.URLStats to a urlStatsResponse.
func toURLStatsResponse(stats *entity.URLStats) urlStatsResponse {
	return urlStatsResponse{
		ShortURL:       stats.ShortCode,
		OriginalURL:    stats.OriginalURL,
		LastHourClicks: stats.LastHourClicks,
		LastDayClicks:  stats.LastDayClicks,
	}
}

func toURLStatsResponses(stats []entity.URLStats) []urlStatsResponse {
	resps := make([]urlStatsResponse, 0, len(stats))
	for i := range stats {
		resps = append(resps, toURLStatsResponse(&stats[i]))
	}
	return resps
}

// validationError represents an individual validation error.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

// Predefined error responses for common scenarios.
var (
	emptyRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "empty request body",
	}

	invalidRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "invalid request body",
	}

	invalidQueryParamsResponse = errorResponse{
		Status:  statusError,
		Message: "invalid query parameters",
	}

	urlNotFoundResponse = errorResponse{
		Status:  statusError,
		Message: "url not found",
	}

	urlInactiveResponse = errorResponse{
		Status:  statusError,
		Message: "url is inactive",
	}

	urlExpiredResponse = errorResponse{
		Status:  statusError,
		Message: "url has expired",
	}

	serverErrorResponse = errorResponse{
		Status:  statusError,
		Message: "server error occurred",
	}
)

// messageForTag returns a user-friendly message based on the validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url":
		return "invalid url"
	default:
		return "invalid value"
	}
}

// getValidationErrors processes validation errors and returns a list of validationError.
func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

// validationErrorResponse constructs an errorResponse for validation errors.
func validationErrorResponse(err error) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: "validation error",
		Errors:  getValidationErrors(err),
	}
}
