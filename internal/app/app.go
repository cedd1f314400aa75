// Package app composes the API server, task queue client, and analysis
// engine. Chooses memory or Asynq task backend based on Redis URL
// presence.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/sudo-tiz/dnshealth-go/internal/api"
	_ "github.com/sudo-tiz/dnshealth-go/internal/checkers" // registers all checkers via init()
	"github.com/sudo-tiz/dnshealth-go/internal/config"
	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/resolver"
	"github.com/sudo-tiz/dnshealth-go/internal/tasks"
	"github.com/sudo-tiz/dnshealth-go/internal/tldregistry"
)

// APIApp wraps server and tasks client for lifecycle management.
type APIApp struct {
	cfg         *config.APIConfig
	tasksClient tasks.ClientInterface
	server      *api.Server
}

// NewAPIApp builds the analysis engine from config, then chooses a
// memory or Asynq task client - no Redis URL means in-memory mode.
func NewAPIApp(cfg *config.APIConfig, redisURL string) (*APIApp, error) {
	a := &APIApp{cfg: cfg}

	tlds, err := tldregistry.Load(cfg.GetTLDDataPath())
	if err != nil {
		return nil, fmt.Errorf("load tld registry: %w", err)
	}

	facade := resolver.NewFacade(
		cfg.GetRecursiveResolver(),
		time.Duration(cfg.GetQueryTimeout())*time.Second,
		cfg.GetMaxRetries(),
	)

	eng := engine.New(facade, tlds,
		engine.WithReportDeadline(time.Duration(cfg.GetReportDeadline())*time.Second),
		engine.WithCheckDeadline(time.Duration(cfg.GetCheckDeadline())*time.Second),
	)

	var client tasks.ClientInterface
	if redisURL == "" {
		client = tasks.NewMemoryClient(eng)
	} else {
		redisAddr := redisURL
		if u, err := url.Parse(redisURL); err == nil {
			redisAddr = u.Host
		}
		client = tasks.NewClient(redisAddr, 24*time.Hour)
	}
	a.tasksClient = client

	srv := api.NewServer(cfg)
	if a.tasksClient != nil {
		srv.SetTasksClient(a.tasksClient)
	}
	a.server = srv

	return a, nil
}

// Run starts HTTP server with configured address.
func (a *APIApp) Run(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server not initialized")
	}
	slog.Info("Starting API", "address", addr)
	return a.server.Run(addr)
}

// Shutdown closes task client connections.
func (a *APIApp) Shutdown(_ context.Context) error {
	if a.tasksClient != nil {
		return a.tasksClient.Close()
	}
	return nil
}
