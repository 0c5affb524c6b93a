package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-market-dashboard/components/dashboard"
)

// SeedOverviewInput controls startup seeding.
type SeedOverviewInput struct {
	// Layout places the starter widgets in areas that are still empty.
	Layout bool
}

// SeedOverviewCommand prepares the widget store for the three panels: it
// registers their areas and the marketplace widget definitions, and can place
// the starter layout.
type SeedOverviewCommand struct {
	store     dashboard.WidgetStore
	registry  dashboard.ProviderRegistry
	service   *dashboard.Service
	telemetry Telemetry
}

// NewSeedOverviewCommand wires the command. service may be nil when the
// layout is never seeded.
func NewSeedOverviewCommand(store dashboard.WidgetStore, registry dashboard.ProviderRegistry, service *dashboard.Service, telemetry Telemetry) *SeedOverviewCommand {
	return &SeedOverviewCommand{
		store:     store,
		registry:  registry,
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[SeedOverviewInput] = (*SeedOverviewCommand)(nil)

// Execute implements gocommand.Commander.
func (c *SeedOverviewCommand) Execute(ctx context.Context, msg SeedOverviewInput) error {
	if c.store == nil {
		return missingDependency("seed overview: widget store not configured")
	}
	if msg.Layout && c.service == nil {
		return missingDependency("seed overview: dashboard service not configured")
	}
	if err := dashboard.RegisterAreas(ctx, c.store); err != nil {
		return err
	}
	if err := dashboard.RegisterDefinitions(ctx, c.store, c.registry); err != nil {
		return err
	}
	placed := 0
	if msg.Layout {
		var err error
		if placed, err = dashboard.SeedLayout(ctx, c.service); err != nil {
			return err
		}
	}
	c.telemetry.Record(ctx, "commands.overview.seed", map[string]any{
		"layout": msg.Layout,
		"placed": placed,
	})
	return nil
}
