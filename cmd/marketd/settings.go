package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/panels/commands"
	"github.com/goliatone/go-market-dashboard/components/panels/queries"
	"github.com/goliatone/go-market-dashboard/components/settings"
)

type settingsCmd struct {
	Show settingsShowCmd `cmd:"" help:"Print the stored settings."`
	Set  settingsSetCmd  `cmd:"" help:"Change settings, e.g. orderAlerts=false sessionTimeoutMinutes=45."`
}

type settingsTarget struct {
	Role string `default:"seller" help:"Panel of the user: admin, seller or buyer."`
	User string `help:"User id. Defaults to the demo user of the panel."`
}

type settingsShowCmd struct {
	settingsTarget `embed:""`
}

func (cmd *settingsShowCmd) Run(root *cli) error {
	return withViewer(root, cmd.settingsTarget, func(ctx context.Context, a *app, viewer panels.Viewer) error {
		page, err := queries.NewSettingsQuery(a.panels).Query(ctx, queries.ProfileInput{Viewer: viewer})
		if err != nil {
			return err
		}
		return printSettings(os.Stdout, page.Settings)
	})
}

type settingsSetCmd struct {
	settingsTarget `embed:""`
	Values []string `arg:"" help:"key=value pairs using the stored field names."`
}

func (cmd *settingsSetCmd) Run(root *cli) error {
	return withViewer(root, cmd.settingsTarget, func(ctx context.Context, a *app, viewer panels.Viewer) error {
		current, err := a.settings.Load(ctx, viewer.UserID)
		if err != nil {
			return err
		}
		next, err := applySettings(current, cmd.Values)
		if err != nil {
			return err
		}
		saved, err := a.bus.SaveSettings.Save(ctx, commands.SaveSettings{Viewer: viewer, Settings: next})
		if err != nil {
			return fmt.Errorf("%s", panels.ErrorMessage(err))
		}
		return printSettings(os.Stdout, saved)
	})
}

func withViewer(root *cli, target settingsTarget, fn func(context.Context, *app, panels.Viewer) error) error {
	cfg, log, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	ctx := context.Background()
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	viewer, err := a.viewerFor(target.Role, target.User)
	if err != nil {
		return err
	}
	return fn(panels.ContextWithViewer(ctx, viewer), a, viewer)
}

// applySettings overlays key=value pairs on current. Values are read as JSON
// when they parse, so true, 45 and "EUR" all work; anything else is a string.
func applySettings(current settings.Settings, pairs []string) (settings.Settings, error) {
	raw, err := json.Marshal(current)
	if err != nil {
		return current, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return current, err
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return current, fmt.Errorf("expected key=value, got %q", pair)
		}
		if _, known := fields[key]; !known || key == "version" {
			return current, fmt.Errorf("unknown setting %q", key)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			decoded = value
		}
		fields[key] = decoded
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return current, err
	}
	return settings.Decode(merged)
}

func printSettings(out io.Writer, s settings.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(fields); err != nil {
		return err
	}
	return enc.Close()
}

type tokenCmd struct {
	Issue tokenIssueCmd `cmd:"" help:"Sign an API token for a user."`
}

type tokenIssueCmd struct {
	Role string        `arg:"" help:"Panel of the user: admin, seller or buyer."`
	User string        `arg:"" help:"User id placed in the subject claim."`
	TTL  time.Duration `name:"ttl" help:"Token lifetime. Defaults to auth.token_ttl."`
}

func (cmd *tokenIssueCmd) Run(root *cli) error {
	cfg, log, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	a := &app{cfg: cfg, log: log}
	a.wireAuth()
	if !a.signer.Enabled() {
		return fmt.Errorf("auth.jwt_secret is not configured")
	}
	viewer, err := a.viewerFor(cmd.Role, cmd.User)
	if err != nil {
		return err
	}
	ttl := cmd.TTL
	if ttl <= 0 {
		ttl = cfg.Auth.TokenTTL
	}
	token, err := a.signer.Issue(viewer, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
