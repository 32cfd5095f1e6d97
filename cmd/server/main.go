package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"trickmatch-server/internal/config"
	"trickmatch-server/internal/mux"
	"trickmatch-server/pkg/db"
	"trickmatch-server/pkg/redisbus"
	"trickmatch-server/pkg/referee"
	"trickmatch-server/pkg/room"
	"trickmatch-server/pkg/store"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10
const shutdownTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", "", "the listen address, overrides the configuration")

func main() {
	flag.Parse()
	cfg := config.Instance()
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, closeStore := openStore(cfg)
	defer closeStore()

	g, ctx := errgroup.WithContext(ctx)

	hub := room.NewHub(logrus.StandardLogger())
	g.Go(func() error {
		return hub.Run(ctx)
	})

	var notifier referee.Notifier = hub
	if cfg.Redis.Addr != "" {
		bus, err := redisbus.New(ctx, cfg.Redis.Addr, cfg.Redis.Channel, logrus.StandardLogger())
		if err != nil {
			logrus.WithError(err).Fatal("could not connect to redis")
		}
		defer bus.Close()

		// every instance, this one included, learns about changes through redis
		notifier = bus
		g.Go(func() error {
			return bus.Forward(ctx, hub, nil)
		})
	}

	ref := referee.New(s, referee.Options{Notifier: notifier})

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	listenAddr := cfg.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      loggingHandler(cfg, c.Handler(mux.NewMux(Version, ref, hub, logrus.StandardLogger()))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	g.Go(func() error {
		logrus.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logrus.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

func openStore(cfg config.Config) (store.Store, func()) {
	if cfg.Store != config.StorePostgres {
		logrus.Info("using the in-memory store")
		return store.NewMemory(), func() {}
	}

	dbh, err := db.Open(cfg.PGDSN)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to database")
	}

	// run the db migrations
	if err := db.Migrate(dbh, cfg.MigrationsPath); err != nil {
		logrus.WithError(err).Fatal("could not migrate database")
	}

	return store.NewPostgres(dbh), func() {
		_ = dbh.Close()
	}
}

func loggingHandler(cfg config.Config, next http.Handler) http.Handler {
	if cfg.Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger(cfg config.Config) {
	if lvl := cfg.Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(cfg.Log.Format) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
