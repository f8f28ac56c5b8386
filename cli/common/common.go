// Package common builds the collaborators every command needs from flags,
// environment settings and the configuration file.
package common

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/zvonler/adminreport/configuration"
	"github.com/zvonler/adminreport/database"
	"github.com/zvonler/adminreport/metrics"
	"github.com/zvonler/adminreport/relay"
	"github.com/zvonler/adminreport/session"
)

// Settings loads the ADMINREPORT_* environment, letting command-line flags
// bound into viper override it.
func Settings() configuration.Settings {
	s, err := configuration.LoadSettings()
	if err != nil {
		log.Fatal(err)
	}
	if v := viper.GetString("log-level"); v != "" {
		s.LogLevel = v
	}
	if v := viper.GetString("dashboard"); v != "" {
		s.DashboardURL = v
	}
	if v := viper.GetString("database"); v != "" {
		s.DatabasePath = v
	} else {
		viper.Set("database", s.DatabasePath)
	}
	return s
}

func Logger(s configuration.Settings) *zap.SugaredLogger {
	logger, err := configuration.NewLogger(s.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	return logger
}

// Fetcher prefers the relay when one is configured and fetches directly
// otherwise or whenever the relay cannot be reached.
func Fetcher(s configuration.Settings, logger *zap.SugaredLogger) relay.Fetcher {
	direct, err := relay.NewDirect(s.ForumCookie, s.RequestTimeout, logger)
	if err != nil {
		log.Fatal(err)
	}
	fb := &relay.Fallback{Secondary: direct, Logger: logger}
	if s.RelayURL != "" {
		fb.Primary = relay.NewClient(s.RelayURL, s.RequestTimeout, s.RelayRetries, logger)
	}
	return fb
}

// Env is everything a command needs to build reports.
type Env struct {
	Settings configuration.Settings
	Logger   *zap.SugaredLogger
	Fetcher  relay.Fetcher
	Archive  *database.ArchiveDB
	Metrics  *metrics.Metrics
	Session  *session.Session
}

func (e *Env) Close() {
	if e.Archive != nil {
		e.Archive.Close()
	}
	e.Logger.Sync()
}

func NewEnv() *Env {
	s := Settings()
	logger := Logger(s)
	fetcher := Fetcher(s, logger)

	archive, err := configuration.OpenArchive()
	if err != nil {
		log.Fatal(fmt.Errorf("opening archive: %w", err))
	}

	env := &Env{
		Settings: s,
		Logger:   logger,
		Fetcher:  fetcher,
		Archive:  archive,
		Metrics:  metrics.New(),
	}

	opts := session.Options{
		Settings:   s,
		ConfigPath: viper.GetString("config"),
		Fetcher:    fetcher,
		Metrics:    env.Metrics,
		Logger:     logger,
	}
	if s.DashboardURL != "" {
		opts.Dashboard = session.NewDashboardSource(s.DashboardURL, fetcher)
	}
	if archive != nil {
		opts.Archive = archive
	}
	env.Session = session.New(opts)
	return env
}
