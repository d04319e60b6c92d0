package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/Callmeg0d/ShortURL/internal/entity"
)

const (
	defaultPage = 1
	defaultSize = 20
)

type urlService interface {
	ShortenURL(ctx context.Context, originalURL string) (*entity.URL, error)
	GetURL(ctx context.Context, shortCode string) (*entity.URL, error)
	ListURLs(ctx context.Context, page, size int, isActive *bool) ([]entity.URL, error)
	Redirect(ctx context.Context, shortCode string) (string, error)
	DeactivateURL(ctx context.Context, shortCode string) error
	GetURLStats(ctx context.Context, shortCode string) (*entity.URLStats, error)
	GetStatsForAllURLs(ctx context.Context) ([]entity.URLStats, error)
	GetStatsSortedByClicks(ctx context.Context, period string) ([]entity.URLStats, error)
}

type urlHandler struct {
	svc      urlService
	validate *validator.Validate
}

func newURLHandler(svc urlService, validate *validator.Validate) *urlHandler {
	return &urlHandler{
		svc:      svc,
		validate: validate,
	}
}

func (h *urlHandler) createURL(w http.ResponseWriter, r *http.Request) {
	var req createURLRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	url, err := h.svc.ShortenURL(r.Context(), req.OriginalURL)
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLResponse(url))
}

func (h *urlHandler) listURLs(w http.ResponseWriter, r *http.Request) {
	page, size := defaultPage, defaultSize
	var isActive *bool

	if v := r.URL.Query().Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, invalidQueryParamsResponse)
			return
		}
		page = p
	}

	if v := r.URL.Query().Get("size"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil || s < 1 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, invalidQueryParamsResponse)
			return
		}
		size = s
	}

	if v := r.URL.Query().Get("is_active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, invalidQueryParamsResponse)
			return
		}
		isActive = &b
	}

	urls, err := h.svc.ListURLs(r.Context(), page, size, isActive)
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLResponses(urls))
}

func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	originalURL, err := h.svc.Redirect(r.Context(), shortCode)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrURLNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, urlNotFoundResponse)
		case errors.Is(err, entity.ErrURLInactive):
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, urlInactiveResponse)
		case errors.Is(err, entity.ErrURLExpired):
			render.Status(r, http.StatusGone)
			render.JSON(w, r, urlExpiredResponse)
		default:
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, redirectResponse{OriginalURL: originalURL})
}

func (h *urlHandler) deactivateURL(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	err := h.svc.DeactivateURL(r.Context(), shortCode)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrURLNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, urlNotFoundResponse)
		case errors.Is(err, entity.ErrURLInactive):
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, urlInactiveResponse)
		default:
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *urlHandler) getURL(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	url, err := h.svc.GetURL(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, urlNotFoundResponse)
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLResponse(url))
}

func (h *urlHandler) getAllStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStatsForAllURLs(r.Context())
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLStatsResponses(stats))
}

func (h *urlHandler) getStatsSorted(period string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.svc.GetStatsSortedByClicks(r.Context(), period)
		if err != nil {
			if errors.Is(err, entity.ErrInvalidPeriod) {
				render.Status(r, http.StatusUnprocessableEntity)
				render.JSON(w, r, errorResponse{
					Status:  statusError,
					Message: entity.ErrInvalidPeriod.Error(),
				})
				return
			}

			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toURLStatsResponses(stats))
	}
}

func (h *urlHandler) getURLStats(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	stats, err := h.svc.GetURLStats(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, urlNotFoundResponse)
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLStatsResponse(stats))
}
