package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/stackdesk/deskagent/src/config"
	"github.com/stackdesk/deskagent/src/store"
)

// MigrateCmd manages database migrations
type MigrateCmd struct {
	Up MigrateUpCmd `cmd:"" help:"Apply pending migrations"`
}

// MigrateUpCmd applies pending migrations
type MigrateUpCmd struct {
	DBPath string `help:"Database path (defaults to config)"`
}

// Run executes the migrate up command
func (c *MigrateUpCmd) Run(ctx *kong.Context, cli *CLI) error {
	dbPath := c.DBPath
	if dbPath == "" {
		cfg, err := config.Load(cli.Config)
		if err != nil {
			return err
		}
		dbPath = cfg.Store.Path
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	fmt.Printf("Database migrated: %s\n", dbPath)
	return nil
}
