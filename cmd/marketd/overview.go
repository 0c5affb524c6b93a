package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/goliatone/go-market-dashboard/components/dashboard"
	"github.com/goliatone/go-market-dashboard/components/dashboard/queries"
	"github.com/goliatone/go-market-dashboard/components/panels"
	panelqueries "github.com/goliatone/go-market-dashboard/components/panels/queries"
	"github.com/goliatone/go-market-dashboard/internal/format"
)

type overviewCmd struct {
	Role      string `arg:"" help:"Panel to read: admin, seller or buyer."`
	User      string `help:"User id. Defaults to the demo user of the panel."`
	Area      string `help:"Only print this area, e.g. seller.overview.main."`
	Available bool   `help:"List the widgets that can be placed on the panel instead."`
}

func (cmd *overviewCmd) Run(root *cli) error {
	return withViewer(root, settingsTarget{Role: cmd.Role, User: cmd.User}, func(ctx context.Context, a *app, viewer panels.Viewer) error {
		if cmd.Available {
			defs, err := queries.NewAvailableWidgetsQuery(a.registry).Query(ctx, viewer.Role)
			if err != nil {
				return err
			}
			return printDefinitions(os.Stdout, defs)
		}
		overview, err := queries.NewOverviewQuery(a.service).Query(ctx, queries.OverviewInput{
			Viewer:   dashboard.ViewerContext{UserID: viewer.UserID, Roles: []string{viewer.Role.String()}},
			AreaCode: cmd.Area,
		})
		if err != nil {
			return err
		}
		for _, area := range overview.Areas {
			if err := printArea(os.Stdout, a.registry, area); err != nil {
				return err
			}
		}
		return nil
	})
}

func printDefinitions(out io.Writer, defs []dashboard.WidgetDefinition) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tDESCRIPTION")
	for _, def := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", def.Code, def.Name, def.Description)
	}
	return tw.Flush()
}

// printArea lists the widgets of an area. Stats widgets print their figures.
func printArea(out io.Writer, registry *dashboard.Registry, area queries.OverviewArea) error {
	fmt.Fprintf(out, "%s [%s]\n", area.Name, area.Code)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, inst := range area.Widgets {
		name := inst.DefinitionID
		if def, ok := registry.Definition(inst.DefinitionID); ok {
			name = def.Name
		}
		if msg, ok := inst.Metadata["error"].(string); ok {
			fmt.Fprintf(tw, "%s\t%s\n", name, msg)
			continue
		}
		fmt.Fprintf(tw, "%s\t\n", name)
		data, _ := inst.Metadata["data"].(dashboard.WidgetData)
		if stats, ok := data["stats"].([]dashboard.Stat); ok {
			for _, stat := range stats {
				fmt.Fprintf(tw, "  %s\t%s\n", stat.Label, stat.Value)
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return nil
}

type documentsCmd struct {
	User string `help:"Seller id. Defaults to the demo seller."`
}

func (cmd *documentsCmd) Run(root *cli) error {
	return withViewer(root, settingsTarget{Role: "seller", User: cmd.User}, func(ctx context.Context, a *app, viewer panels.Viewer) error {
		page, err := panelqueries.NewDocumentsQuery(a.panels).Query(ctx, panelqueries.ProfileInput{Viewer: viewer})
		if err != nil {
			return err
		}
		if len(page.Documents) == 0 {
			fmt.Println("No documents uploaded.")
			return nil
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSIZE\tUPLOADED\tVERIFIED")
		for _, doc := range page.Documents {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				doc.ID, doc.Name, doc.Type, format.Bytes(doc.SizeBytes), format.Ago(doc.UploadedAt), yesNo(doc.Verified))
		}
		return tw.Flush()
	})
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
