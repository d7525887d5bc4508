package cli

import (
	"context"
	"fmt"

	"finviz/internal/backend"
	"finviz/internal/cache"
	"finviz/internal/config"
	"finviz/internal/core"
	"finviz/internal/engine"
	"finviz/internal/log"
	"finviz/internal/services"
	gsheet "finviz/internal/sheets/google"
)

// App is the wired service graph behind the HTTP server.
type App struct {
	Backend    *backend.BackendResult
	Datasets   *services.DatasetService
	Charts     *services.ChartService
	View       *services.View
	ChartCache *cache.LRUCache[engine.Result]
	// Importer is nil when no spreadsheet is configured.
	Importer services.RecordSource
}

// NewApp creates the backend and services for cfg. Stored datasets purge
// the chart cache and refresh the displayed view.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, err
	}

	var publisher services.Publisher
	if result.Publisher != nil {
		publisher = result.Publisher
	}

	chartCache := cache.NewLRUCache[engine.Result](cfg.CacheSize, cfg.CacheTTL)
	app := &App{
		Backend:    result,
		Datasets:   services.NewDatasetService(result.Backend, publisher, logger),
		Charts:     services.NewChartService(result.Backend, chartCache, logger),
		View:       services.NewView(result.Backend, logger),
		ChartCache: chartCache,
	}

	app.Datasets.OnStored(func(ctx context.Context, ds core.Dataset) {
		if n := app.Charts.Invalidate(); n > 0 {
			logger.WithComponent(log.ComponentCache).DebugContext(ctx, "Chart cache purged",
				log.FieldDatasetID, ds.ID, "entries", n)
		}
	})
	app.Datasets.OnStored(app.View.OnDatasetStored)

	if cfg.SheetsConfigured() {
		client, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			_ = result.Close()
			return nil, fmt.Errorf("google sheets: %w", err)
		}
		app.Importer = client
		logger.WithComponent(log.ComponentSheets).Info("Google Sheets import enabled", "source", client.Name())
	}

	// A persistent backend may already hold a dataset from a previous run.
	if _, err := app.View.Refresh(ctx); err != nil {
		logger.WarnContext(ctx, "Initial view computation failed", log.FieldError, err)
	}
	return app, nil
}

// Close releases the backend.
func (a *App) Close() error {
	return a.Backend.Close()
}
