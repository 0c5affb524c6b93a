package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/panels/gorouter"
	"github.com/goliatone/go-market-dashboard/components/panels/httpapi"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/internal/auth"
	"github.com/goliatone/go-market-dashboard/internal/lib/sl"
	"github.com/goliatone/go-market-dashboard/pkg/goadmin"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	Transport string `help:"Override the configured transport (fiber or chi)."`
	Addr      string `help:"Override the listen address, host:port."`
}

func (cmd *serveCmd) Run(root *cli) error {
	cfg, log, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	switch cmd.Transport {
	case "":
	case "fiber", "chi":
		cfg.Listen.Transport = cmd.Transport
	default:
		return fmt.Errorf("unsupported transport %q", cmd.Transport)
	}
	addr := cfg.Addr()
	if cmd.Addr != "" {
		addr = cmd.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("wire dashboard", sl.Err(err))
		return err
	}
	defer a.Close()

	if err := a.seedMenus(ctx); err != nil {
		log.Warn("seed menus", sl.Err(err))
	}

	log.Info("starting dashboard",
		slog.String("env", cfg.Env),
		slog.String("transport", cfg.Listen.Transport),
		slog.String("backend", cfg.Backend.Mode),
		slog.String("address", addr),
		slog.String("base_path", cfg.Listen.BasePath),
	)
	if cfg.Listen.Transport == "chi" {
		return a.serveChi(ctx, addr)
	}
	return a.serveFiber(ctx, addr)
}

// newFiberServer returns go-router's fiber adapter with panic recovery in
// front of the default request logger.
func newFiberServer() router.Server[*fiber.App] {
	return router.NewFiberAdapter(func(app *fiber.App) *fiber.App {
		app.Use(fiberrecover.New())
		return router.DefaultFiberOptions(app)
	})
}

// serveFiber mounts the HTML panels, JSON endpoints and the WebSocket feed
// on go-router's fiber adapter.
func (a *app) serveFiber(ctx context.Context, addr string) error {
	server := newFiberServer()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:         server.Router(),
		Panels:         a.panels,
		Overview:       a.overview,
		Actions:        a.bus,
		Widgets:        a.widgets,
		Broadcast:      a.broadcast,
		ViewerResolver: a.resolveViewer,
		BasePath:       a.cfg.Listen.BasePath,
	}); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(addr) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// resolveViewer reads the bearer token or access_token query parameter. In
// demo mode a request without a token browses as the fixture user of the
// panel named by the :role segment.
func (a *app) resolveViewer(c gorouter.RequestContext) panels.Viewer {
	token := auth.BearerToken(c.Header("Authorization"))
	if token == "" {
		token = c.Query(httpapi.AccessTokenParam)
	}
	if token != "" {
		viewer, err := a.verifier.Verify(token)
		if err != nil {
			a.log.Debug("token rejected", sl.Err(err), sl.Secret("token", token))
			return panels.Viewer{}
		}
		return viewer
	}
	if a.signer.Enabled() {
		return panels.Viewer{}
	}
	viewer, _ := a.demo.ForRole(status.ParseRole(c.Param("role")))
	return viewer
}

// serveChi serves the JSON API on net/http behind chi.
func (a *app) serveChi(ctx context.Context, addr string) error {
	handler, err := httpapi.NewRouter(httpapi.Config{
		Panels:    a.panels,
		Overview:  a.overview,
		Actions:   a.bus,
		Widgets:   a.widgets,
		Broadcast: a.broadcast,
		Verifier:  a.verifier,
		Logger:    a.log,
	})
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ErrorLog:          slog.NewLogLogger(a.log.Handler(), slog.LevelError),
		ReadHeaderTimeout: 10 * time.Second,
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// seedMenus logs the panel navigation through the goadmin helper so hosts
// embedding the panels can check the menu they would receive.
func (a *app) seedMenus(ctx context.Context) error {
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		MenuBuilder:     menuLogger{log: a.log},
		Catalog:         a.catalog,
		Service:         a.service,
		BasePath:        a.cfg.Listen.BasePath,
	})
	if err != nil {
		return err
	}
	return admin.Bootstrap(ctx)
}

type menuLogger struct {
	log *slog.Logger
}

func (m menuLogger) EnsureMenuItem(_ context.Context, menuCode string, item goadmin.MenuItem) error {
	m.log.Debug("menu item",
		slog.String("menu", menuCode),
		slog.String("label", item.Label),
		slog.String("route", item.Route),
		slog.Int("position", item.Position),
	)
	return nil
}
