// Package app contains the main entrypoint for the server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starquake/quizgen/internal/config"
	"github.com/starquake/quizgen/internal/db"
	"github.com/starquake/quizgen/internal/logging"
	"github.com/starquake/quizgen/internal/quiz"
	"github.com/starquake/quizgen/internal/server"
	"github.com/starquake/quizgen/internal/store"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func newLogger(cfg *config.Config, stdout io.Writer) *logging.Logger {
	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.IsProduction() {
		return logging.NewLoggerWithLevel(stdout, level)
	}

	return logging.NewConsoleLogger(stdout, level)
}

// openStore opens the store selected by cfg. The returned close function releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (quiz.Store, func() error, error) {
	switch cfg.StoreDriver {
	case store.DriverFile:
		s := store.NewFileStore(cfg.QuizFile, logger, store.WithSkipMalformed(cfg.SkipMalformed))
		logger.Info(ctx, "using quiz file", logging.String("path", s.Path()))

		return s, func() error { return nil }, nil
	case store.DriverSQLite:
		if err := db.SetupGoose(); err != nil {
			return nil, nil, err
		}
		conn, err := db.Open(ctx, cfg.StoreDriver, cfg.DBURI, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening database connection: %w", err)
		}
		if err = db.Migrate(ctx, conn); err != nil {
			_ = conn.Close()

			return nil, nil, fmt.Errorf("error migrating database: %w", err)
		}

		return store.NewSQLiteStore(conn, logger), conn.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", store.ErrUnsupportedDriver, cfg.StoreDriver)
	}
}

// Run parses the configuration from getenv, opens the question store, and serves HTTP until ctx is canceled or an
// interrupt is received. If ln is nil, Run listens on the configured host and port.
func Run(
	ctx context.Context,
	getenv func(string) string,
	stdout io.Writer,
	ln net.Listener,
) error {
	var err error
	mainCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var cfg *config.Config
	if cfg, err = config.Parse(getenv); err != nil {
		msg := "error parsing config"
		logging.NewLogger(stdout).Error(ctx, msg, logging.ErrAttr(err))

		return fmt.Errorf("%s: %w", msg, err)
	}

	logger := newLogger(cfg, stdout)

	questionStore, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "error opening store", logging.ErrAttr(err))

		return err
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			logger.Error(ctx, "error closing store", logging.ErrAttr(closeErr))
		}
	}()

	questions, err := questionStore.Load(ctx)
	if err != nil {
		msg := "error loading questions"
		logger.Error(ctx, msg, logging.ErrAttr(err))

		return fmt.Errorf("%s: %w", msg, err)
	}
	logger.Info(
		ctx, "store ready",
		logging.String("driver", cfg.StoreDriver),
		logging.Int("questions", len(questions)),
	)

	srv := server.NewServer(logger, server.NewDeps(cfg, questionStore, logger))

	if ln == nil {
		listenConfig := &net.ListenConfig{}
		ln, err = listenConfig.Listen(mainCtx, "tcp", net.JoinHostPort(cfg.Host, cfg.Port))
		if err != nil {
			return fmt.Errorf("error listening on %s:%s: %w", cfg.Host, cfg.Port, err)
		}
	}

	httpServer := &http.Server{
		ReadHeaderTimeout: readHeaderTimeout,
		Handler:           srv,
	}

	g, gCtx := errgroup.WithContext(mainCtx)
	g.Go(func() error {
		addr := ln.Addr().String()
		logger.Info(ctx, "listening on "+addr, logging.String("addr", addr))
		logger.Info(ctx, fmt.Sprintf("visit http://%s/admin to manage questions", addr))
		if serveErr := httpServer.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("error listening and serving: %w", serveErr)
		}

		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		// make a new context for the Shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer shutdownCancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			return fmt.Errorf("error shutting down server: %w", shutdownErr)
		}
		logger.Info(ctx, "server stopped")

		return nil
	})

	if err = g.Wait(); err != nil {
		logger.Error(ctx, "server error", logging.ErrAttr(err))

		return err
	}

	return nil
}
