package main

import (
	"github.com/alecthomas/kong"
)

type cli struct {
	Config string `short:"c" type:"path" env:"MARKET_CONFIG" help:"Path to the YAML config file. Environment variables override it."`

	Serve     serveCmd     `cmd:"" default:"1" help:"Serve the admin, seller and buyer panels."`
	List      listCmd      `cmd:"" help:"Print one page of a panel screen as a table."`
	Overview  overviewCmd  `cmd:"" help:"Print the overview widgets of a panel."`
	Settings  settingsCmd  `cmd:"" help:"Show or change the stored settings of a user."`
	Documents documentsCmd `cmd:"" help:"List the profile documents of a seller."`
	Token     tokenCmd     `cmd:"" help:"Issue API tokens."`
}

func main() {
	root := &cli{}
	ctx := kong.Parse(root,
		kong.Name("marketd"),
		kong.Description("Marketplace admin, seller and buyer dashboards."),
		kong.UsageOnError(),
	)
	err := ctx.Run(root)
	ctx.FatalIfErrorf(err)
}
