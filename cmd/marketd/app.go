package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/goliatone/go-market-dashboard/components/dashboard"
	dashcmd "github.com/goliatone/go-market-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-market-dashboard/components/kvstore"
	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/panels/commands"
	"github.com/goliatone/go-market-dashboard/components/settings"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/components/supplier"
	"github.com/goliatone/go-market-dashboard/internal/auth"
	"github.com/goliatone/go-market-dashboard/internal/config"
	"github.com/goliatone/go-market-dashboard/internal/lib/sl"
	"github.com/goliatone/go-market-dashboard/internal/logger"
	"github.com/goliatone/go-market-dashboard/pkg/activity"
	"github.com/goliatone/go-market-dashboard/pkg/analytics"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

const activityCapacity = 200

// verifier resolves API tokens to viewers.
type verifier interface {
	Verify(token string) (panels.Viewer, error)
}

// app holds every wired component of the process.
type app struct {
	cfg *config.Config
	log *slog.Logger

	store     kvstore.Store
	closers   []func() error
	client    marketplace.Client
	sink      *activity.MemorySink
	broadcast *dashboard.BroadcastHook
	charts    *dashboard.ChartCache
	telemetry dashboard.SlogTelemetry

	settings  *settings.Accessor
	documents *supplier.Documents
	tokens    *supplier.Tokens
	bus       *commands.Bus
	catalog   *panels.Catalog
	panels    *panels.Controller

	registry *dashboard.Registry
	service  *dashboard.Service
	overview *dashboard.Controller
	widgets  *dashcmd.Widgets

	signer   *auth.Verifier
	verifier verifier
	demo     auth.Demo
}

func loadConfig(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.Setup(cfg.Env, os.Stderr), nil
}

// newApp wires storage, the backend client, the panel commands and the
// overview service. Close releases the storage.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, telemetry: dashboard.NewSlogTelemetry(log)}
	if err := a.openStore(); err != nil {
		return nil, err
	}
	accessor, err := settings.NewAccessor(a.store)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.settings = accessor
	a.documents = supplier.NewDocuments(a.store)
	a.tokens = supplier.NewTokens(a.store)

	client, err := a.openClient()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.client = client

	a.sink = activity.NewMemorySink(activityCapacity)
	hooks := activity.Hooks{a.sink}
	emitter := activity.NewEmitter(hooks, activity.Config{Enabled: true, Channel: "panels"})
	a.broadcast = dashboard.NewBroadcastHook()
	a.charts = dashboard.NewChartCache(cfg.Charts.CacheTTL)
	refresh := dashboard.RefreshHooks{a.charts, a.broadcast}

	a.bus = commands.NewBus(commands.BusOptions{
		Deps: commands.Deps{
			Client:    a.client,
			Telemetry: a.telemetry,
			Activity:  emitter,
			Refresh:   refresh,
		},
		Settings:  a.settings,
		Documents: a.documents,
		Tokens:    a.tokens,
	})
	a.catalog = panels.NewCatalog(panels.CatalogOptions{
		BasePath: cfg.Listen.BasePath,
		Currency: cfg.Views.Currency,
		Locale:   cfg.Views.Locale,
		PageSizes: map[status.Role]int{
			status.RoleAdmin:  cfg.Views.AdminPageSize,
			status.RoleSeller: cfg.Views.SellerPageSize,
			status.RoleBuyer:  cfg.Views.BuyerPageSize,
		},
		Overlays: a.bus,
	})
	renderer, err := panels.NewTemplateRenderer()
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("panel templates: %w", err)
	}
	a.panels, err = panels.NewController(panels.ControllerOptions{
		Client:    a.client,
		Catalog:   a.catalog,
		Renderer:  renderer,
		Settings:  a.settings,
		Documents: a.documents,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	if err := a.wireOverview(ctx, hooks, refresh); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.wireAuth()
	return a, nil
}

func (a *app) openStore() error {
	switch a.cfg.Storage.Driver {
	case "sqlite":
		db, err := kvstore.OpenSQLite(a.cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		a.store = db
		a.closers = append(a.closers, db.Close)
		a.log.Debug("storage ready", slog.String("driver", "sqlite"), slog.String("path", a.cfg.Storage.Path))
	default:
		a.store = kvstore.NewMemory()
	}
	return nil
}

func (a *app) openClient() (marketplace.Client, error) {
	if a.cfg.Backend.Mode == "http" {
		return marketplace.NewHTTPClient(marketplace.HTTPConfig{
			BaseURL:     a.cfg.Backend.BaseURL,
			TokenSource: backendToken(a.tokens, a.cfg.Backend.Token),
			Timeout:     a.cfg.Backend.Timeout,
			Logger:      a.log,
		})
	}
	data := marketplace.DemoFixtures()
	if path := a.cfg.Backend.Fixtures; path != "" {
		loaded, err := marketplace.LoadFixtures(path)
		if err != nil {
			return nil, err
		}
		data = loaded
		a.log.Info("fixtures loaded", slog.String("path", path))
	}
	var opts []marketplace.MockOption
	if a.cfg.Backend.Latency > 0 {
		opts = append(opts, marketplace.WithLatency(a.cfg.Backend.Latency))
	}
	return marketplace.NewMockClient(data, opts...), nil
}

// backendToken prefers the access token a seller saved on their documents
// page and falls back to the configured service token.
func backendToken(tokens *supplier.Tokens, fallback string) marketplace.TokenSource {
	return func(ctx context.Context) string {
		viewer, ok := panels.ViewerFromContext(ctx)
		if !ok || viewer.Role != status.RoleSeller {
			return fallback
		}
		token, err := tokens.Token(ctx, viewer.UserID)
		if err != nil || token == "" {
			return fallback
		}
		return token
	}
}

func (a *app) wireOverview(ctx context.Context, hooks activity.Hooks, refresh dashboard.RefreshHooks) error {
	a.registry = dashboard.NewRegistry()
	repos := analytics.New(a.client,
		analytics.WithBasePath(a.cfg.Listen.BasePath),
	)
	sources := repos.Sources(dashboard.NewSinkActivityFeed(a.sink), a.cfg.Views.Currency)
	sources.Charts = []dashboard.ChartOption{
		dashboard.WithChartCache(a.charts),
		dashboard.WithChartTheme(a.cfg.Charts.Theme),
	}
	if host := a.cfg.Charts.AssetsHost; host != "" {
		sources.Charts = append(sources.Charts, dashboard.WithChartAssetsHost(host))
	}
	if err := a.registry.RegisterSources(sources); err != nil {
		return fmt.Errorf("register widget providers: %w", err)
	}

	store := dashboard.NewMemoryWidgetStore()
	a.service = dashboard.NewService(dashboard.Options{
		WidgetStore:     store,
		Providers:       a.registry,
		PreferenceStore: dashboard.NewKVPreferenceStore(a.store),
		RefreshHook:     refresh,
		Telemetry:       a.telemetry,
		ActivityHooks:   hooks,
		ActivityConfig:  activity.Config{Enabled: true},
	})
	seed := dashcmd.NewSeedOverviewCommand(store, a.registry, a.service, a.telemetry)
	if err := seed.Execute(ctx, dashcmd.SeedOverviewInput{Layout: true}); err != nil {
		return fmt.Errorf("seed overview: %w", err)
	}

	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("overview templates: %w", err)
	}
	a.overview = dashboard.NewController(dashboard.ControllerOptions{
		Service:  a.service,
		Renderer: renderer,
		Registry: a.registry,
	})
	a.widgets = dashcmd.NewWidgets(a.service, a.telemetry)
	return nil
}

// wireAuth picks the token verifier. Without a signing secret the process
// accepts the demo tokens "admin", "seller" and "buyer".
func (a *app) wireAuth() {
	a.demo = auth.DemoViewers()
	a.signer = auth.NewVerifier(a.cfg.Auth.JWTSecret, a.cfg.Auth.Issuer)
	if a.signer.Enabled() {
		a.verifier = a.signer
		return
	}
	a.log.Warn("auth.jwt_secret not set, accepting demo tokens")
	a.verifier = a.demo
}

// viewerFor returns the viewer for a CLI invocation.
func (a *app) viewerFor(role, userID string) (panels.Viewer, error) {
	parsed := status.ParseRole(role)
	if parsed == status.RoleUnknown {
		return panels.Viewer{}, fmt.Errorf("unknown role %q", role)
	}
	if userID != "" {
		return panels.Viewer{UserID: userID, Role: parsed}, nil
	}
	viewer, _ := a.demo.ForRole(parsed)
	return viewer, nil
}

// Close releases storage handles.
func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	if firstErr != nil {
		a.log.Error("close storage", sl.Err(firstErr))
	}
	return firstErr
}

func withTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, d)
}
