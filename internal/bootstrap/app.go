package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/civiclens/councilscribe/internal/domain/pipeline"
	"github.com/civiclens/councilscribe/internal/domain/records"
	"github.com/civiclens/councilscribe/internal/domain/summarize"
	"github.com/civiclens/councilscribe/internal/infra/config"
)

// App encapsulates the HTTP server lifecycle and batch entry points.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *http.Server
	pipeline *pipeline.Service
	styles   *summarize.Registry
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, pipelineSvc *pipeline.Service, styles *summarize.Registry) *App {
	return &App{
		cfg:      cfg,
		logger:   logger.With("component", "bootstrap"),
		server:   server,
		pipeline: pipelineSvc,
		styles:   styles,
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// RunBatch summarizes every entity of the given kind and reports tallies.
func (a *App) RunBatch(ctx context.Context, kind records.EntityKind, styleName string, force bool) (pipeline.BatchResult, error) {
	if styleName == "" {
		styleName = a.cfg.Summary.DefaultStyle
	}
	style, ok := a.styles.ByName(styleName)
	if !ok {
		return pipeline.BatchResult{}, fmt.Errorf("unknown style: %s", styleName)
	}

	switch kind {
	case records.EntityDocument:
		return a.pipeline.SummarizeAllDocuments(ctx, style, force)
	case records.EntityLegislation:
		return a.pipeline.SummarizeAllLegislations(ctx, style, force)
	case records.EntityMeeting:
		return a.pipeline.SummarizeAllMeetings(ctx, style, force)
	default:
		return pipeline.BatchResult{}, fmt.Errorf("unknown entity kind: %s", kind)
	}
}
