package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/panels/queries"
)

type listCmd struct {
	Role     string `arg:"" help:"Panel to read: admin, seller or buyer."`
	Screen   string `arg:"" help:"Screen of the panel, e.g. orders, returns, payouts."`
	User     string `help:"User id to act as. Defaults to the demo user of the panel."`
	Page     int    `default:"1" help:"Page to fetch."`
	Search   string `short:"s" help:"Filter the fetched page by this text."`
	Selected string `help:"Open the detail of this record id."`
}

func (cmd *listCmd) Run(root *cli) error {
	cfg, log, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(context.Background(), cfg.Backend.Timeout)
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	viewer, err := a.viewerFor(cmd.Role, cmd.User)
	if err != nil {
		return err
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(cmd.Page))
	params.Set("search", cmd.Search)
	params.Set("selected", cmd.Selected)
	page, err := queries.NewListQuery(a.panels).Query(panels.ContextWithViewer(ctx, viewer), queries.ListInput{
		Viewer: viewer,
		Screen: viewer.Role.String() + "." + strings.ToLower(cmd.Screen),
		Params: params,
	})
	if err != nil {
		return err
	}
	return printPage(os.Stdout, page)
}

// printPage writes the list page as an aligned table followed by the pager
// and, when a record is selected, its detail groups.
func printPage(out io.Writer, page panels.ListPage) error {
	fmt.Fprintf(out, "%s\n", page.Title)
	for _, stat := range page.Stats {
		fmt.Fprintf(out, "  %s: %s\n", stat.Label, stat.Value)
	}
	if page.Failed() {
		fmt.Fprintf(out, "\n%s\n  %s\n", page.Error, page.ErrorDetail)
		return nil
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	headers := make([]string, 0, len(page.Columns)+1)
	headers = append(headers, "ID")
	for _, col := range page.Columns {
		headers = append(headers, strings.ToUpper(col.Label))
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range page.Rows {
		cells := make([]string, 0, len(row.Cells)+1)
		id := row.ID
		if row.Pending {
			id += "*"
		}
		cells = append(cells, id)
		for _, cell := range row.Cells {
			text := cell.Text
			if cell.Badge != nil {
				text = cell.Badge.Label
			}
			cells = append(cells, text)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(page.Rows) == 0 {
		fmt.Fprintf(out, "%s\n", page.EmptyMessage)
	}
	fmt.Fprintf(out, "\npage %d of %d, %d records\n", page.Page, page.Pages, page.Total)

	if page.Detail == nil {
		return nil
	}
	fmt.Fprintf(out, "\n%s\n", page.Detail.Title)
	for _, group := range page.Detail.Groups {
		fmt.Fprintf(out, "\n[%s]\n", group.Title)
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, f := range group.Fields {
			value := f.Value
			if f.Badge != nil {
				value = f.Badge.Label
			}
			fmt.Fprintf(tw, "%s\t%s\n", f.Label, value)
		}
		if len(group.Headers) > 0 {
			fmt.Fprintln(tw, strings.Join(group.Headers, "\t"))
			for _, r := range group.Rows {
				fmt.Fprintln(tw, strings.Join(r, "\t"))
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
