// Package app wires the application together and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"golang.org/x/sync/errgroup"

	api "github.com/Callmeg0d/ShortURL/internal/api/http"
	"github.com/Callmeg0d/ShortURL/internal/config"
	"github.com/Callmeg0d/ShortURL/internal/database/postgres"
	"github.com/Callmeg0d/ShortURL/internal/service"
	"github.com/Callmeg0d/ShortURL/internal/shortcode"
	pkgpostgres "github.com/Callmeg0d/ShortURL/pkg/postgres"
)

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	db, err := pkgpostgres.New(
		ctx,
		cfg.Postgres.DSN(),
		pkgpostgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		pkgpostgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		pkgpostgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		pkgpostgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	if err := pkgpostgres.RunMigrations("file://migrations", cfg.Postgres.DSN()); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	urlRepo := postgres.NewURLRepository(db)
	clickRepo := postgres.NewClickRepository(db)
	codeGen := shortcode.New(cfg.ShortCodeLength)
	urlSvc := service.NewURLService(urlRepo, clickRepo, codeGen, cfg.URLTTL)

	logger := httplog.NewLogger("shorturl", httplog.Options{
		LogLevel: slog.LevelInfo,
		JSON:     cfg.Env == config.EnvProd,
		Concise:  cfg.Env != config.EnvProd,
	})

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        api.NewRouter(logger, urlSvc),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
