package main

import (
	"fmt"
	"net/http"

	"github.com/nikbrunner/bmc/internal/api"
	"github.com/nikbrunner/bmc/internal/config"
	"github.com/nikbrunner/bmc/internal/logger"
	"github.com/nikbrunner/bmc/internal/mutation"
	"github.com/nikbrunner/bmc/internal/notify"
	"github.com/nikbrunner/bmc/internal/query"
	"github.com/nikbrunner/bmc/internal/remote"
	"github.com/nikbrunner/bmc/internal/storage"
	"github.com/nikbrunner/bmc/internal/tabseed"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	baseURL    string
	verbose    bool
}

// env is everything a command needs to talk to the server.
type env struct {
	cfg        *config.Config
	log        logger.Logger
	sessions   storage.Storage
	httpClient *http.Client
	notices    *notify.Center
	store      *remote.Store
	inspector  *tabseed.Inspector
}

func openEnv(flags *globalFlags) (*env, error) {
	path := flags.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.baseURL != "" {
		cfg.BaseURL = flags.baseURL
	}

	level := cfg.LogLevel
	if flags.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Params{Level: level, Path: cfg.LogFile})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	sessions, err := storage.Open(cfg.SessionStore, cfg.SessionPath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	jar, err := storage.NewPersistentJar(storage.JarParams{Storage: sessions, Logger: log})
	if err != nil {
		_ = sessions.Close()
		return nil, fmt.Errorf("load session: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout.Std(), Jar: jar}
	client := api.NewClient(api.ClientParams{
		BaseURL:    cfg.BaseURL,
		HTTPClient: httpClient,
		Logger:     log,
	})
	notices := notify.NewCenter(notify.Params{TTL: cfg.NoticeDuration.Std()})
	store := remote.NewStore(remote.StoreParams{
		API:                client,
		Cache:              query.New(query.Params{Logger: log}),
		Runner:             mutation.NewRunner(log),
		Notifier:           notices,
		Logger:             log,
		BookmarksStaleTime: cfg.BookmarksStaleTime.Std(),
	})

	log.Debug("env ready",
		logger.String("base_url", cfg.BaseURL),
		logger.String("session_store", cfg.SessionStore))

	return &env{
		cfg:        cfg,
		log:        log,
		sessions:   sessions,
		httpClient: httpClient,
		notices:    notices,
		store:      store,
		// Page fetches must not carry the API session cookie.
		inspector: tabseed.NewInspector(tabseed.InspectorParams{
			HTTPClient: &http.Client{Timeout: cfg.Timeout.Std()},
			Logger:     log,
		}),
	}, nil
}

// Close releases the store, the session storage and flushes the log.
func (e *env) Close() {
	e.store.Close()
	if err := e.sessions.Close(); err != nil {
		e.log.Warn("close session store", logger.Error(err))
	}
	_ = e.log.Sync()
}

// withEnv opens the environment, runs fn and closes it again.
func withEnv(flags *globalFlags, fn func(e *env) error) error {
	e, err := openEnv(flags)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(e)
}
