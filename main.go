package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crewboard/auth"
	"crewboard/handlers"
	"crewboard/store"

	"github.com/cdfmlr/crud/log"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var logger = log.ZoneLogger("crewboard")

func main() {
	configPath := flag.String("config", "", "path to a yaml config file")
	writeConfig := flag.Bool("write-config", false, "print the effective config as yaml and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WithError(err).Warn("failed to load .env file")
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("bad config")
	}

	if *writeConfig {
		if err := cfg.Write(os.Stdout); err != nil {
			logger.WithError(err).Fatal("write config")
		}
		return
	}

	setLogLevel(cfg.LogLevel)

	if err := run(cfg); err != nil {
		logger.WithError(err).Fatal("crewboard stopped")
	}
}

func run(cfg *CrewboardConfig) error {
	db, err := store.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	files, err := makeFileStore(cfg)
	if err != nil {
		return err
	}

	key := []byte(cfg.Session.SecretKey)
	if len(key) == 0 {
		logger.Warn("no session secret key configured: using a random one, sessions end on restart")
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return err
		}
	}
	sessions, err := auth.NewSessions(key, cfg.Session.TTL, cfg.Session.CookieSecure)
	if err != nil {
		return err
	}

	r := MakeRouter(cfg, handlers.New(db, files, sessions))

	server := &http.Server{
		Addr:         cfg.HttpListenAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.HttpListenAddr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}

func setLogLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("LogLevel", level).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	log.Logger.SetLevel(lvl)
}
