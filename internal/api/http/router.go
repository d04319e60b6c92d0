// Package http exposes the URL shortener over a chi router.
package http

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"

	"github.com/Callmeg0d/ShortURL/internal/entity"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

func NewRouter(logger *httplog.Logger, urlSvc urlService) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"POST", "GET", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/ping", handlePing)

	h := newURLHandler(urlSvc, getValidate())

	r.Route("/urls", func(r chi.Router) {
		r.Post("/create", h.createURL)
		r.Get("/all", h.listURLs)
		r.Get("/r/{shortCode}", h.redirect)
		r.Patch("/deactivate/{shortCode}", h.deactivateURL)

		// Static segments win over the wildcard, so /stats/hour and
		// /stats/day never shadow a short code lookup.
		r.Route("/stats", func(r chi.Router) {
			r.Get("/", h.getAllStats)
			r.Get("/hour", h.getStatsSorted(entity.PeriodHour))
			r.Get("/day", h.getStatsSorted(entity.PeriodDay))
			r.Get("/{shortCode}", h.getURLStats)
		})

		r.Get("/{shortCode}", h.getURL)
	})

	return r
}
