package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/stackdesk/deskagent/src/config"
	"github.com/stackdesk/deskagent/src/store"
)

// SeedCmd creates demo users, a team, a ticket, and session tokens so the
// agent endpoint can be exercised right away.
type SeedCmd struct {
	DBPath string `help:"Database path (defaults to config)"`
}

// Run executes the seed command
func (c *SeedCmd) Run(ctx *kong.Context, cli *CLI) error {
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

	bg := context.Background()
	conn := db.DB()

	adminName := "Demo Admin"
	admin := &store.Profile{Email: "admin@example.com", FullName: &adminName, Role: "admin"}
	if err := store.CreateProfile(bg, conn, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	agentName := "Demo Agent"
	agentUser := &store.Profile{Email: "agent@example.com", FullName: &agentName, Role: "agent"}
	if err := store.CreateProfile(bg, conn, agentUser); err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	team := &store.Team{Name: "Support"}
	if err := store.CreateTeam(bg, conn, team); err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	if err := store.AddTeamMember(bg, conn, team.ID, agentUser.ID); err != nil {
		return fmt.Errorf("failed to add team member: %w", err)
	}

	ticket := &store.Ticket{
		Title:       "Demo: cannot log in",
		Description: "Customer reports login failures since this morning.",
		Priority:    store.TicketPriorityHigh,
		TeamID:      &team.ID,
		AssignedTo:  &agentUser.ID,
		CreatedBy:   admin.ID,
	}
	if err := store.CreateTicket(bg, conn, ticket); err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	expiry := time.Now().Add(30 * 24 * time.Hour)
	adminToken := uuid.New().String()
	agentToken := uuid.New().String()
	for _, session := range []*store.Session{
		{Token: adminToken, UserID: admin.ID, ExpiresAt: expiry},
		{Token: agentToken, UserID: agentUser.ID, ExpiresAt: expiry},
	} {
		if err := store.CreateSession(bg, conn, session); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
	}

	fmt.Printf("Seeded database %s\n", dbPath)
	fmt.Printf("  admin:  %s (token %s)\n", admin.Email, adminToken)
	fmt.Printf("  agent:  %s (token %s)\n", agentUser.Email, agentToken)
	fmt.Printf("  team:   %s (%s)\n", team.Name, team.ID)
	fmt.Printf("  ticket: %s (%s)\n", ticket.Title, ticket.ID)
	return nil
}
