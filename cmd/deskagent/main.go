package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	Config   string `help:"Path to config file"`
	LogLevel string `default:"info" help:"Log level"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the agent HTTP service (default)"`
	Migrate MigrateCmd `cmd:"" help:"Database migrations"`
	Seed    SeedCmd    `cmd:"" help:"Seed demo users, teams, and sessions"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("deskagent"),
		kong.Description("Support-ticketing assistant service"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
