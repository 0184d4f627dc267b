package authz

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/stackdesk/deskagent/src/store"
)

// Gate evaluates a tool's requirement against the caller before the tool body
// executes. It resolves target entities (tickets, profiles) from the raw tool
// arguments when the requirement needs them.
type Gate struct {
	db     store.ExecQuerier
	logger *slog.Logger
}

func NewGate(db store.ExecQuerier, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{db: db, logger: logger.With("component", "authz")}
}

// targetRefs are the argument fields the gate may need to resolve.
type targetRefs struct {
	TicketID string `json:"ticketId"`
	UserID   string `json:"userId"`
}

// Authorize decides whether the caller may run a tool with the given
// arguments. The error return is reserved for backend failures while
// resolving targets; rule violations come back as denials.
func (g *Gate) Authorize(ctx context.Context, caller Identity, req Requirement, args json.RawMessage) (Decision, error) {
	if !slices.Contains(req.Roles, caller.Role) {
		g.logger.Debug("role denied", "user_id", caller.UserID, "role", caller.Role)
		return Deny(fmt.Sprintf("unauthorized: requires role %s", roleList(req.Roles))), nil
	}

	var refs targetRefs
	if req.TicketScoped || req.TargetMustBeAgent {
		if err := json.Unmarshal(args, &refs); err != nil {
			return Deny("invalid arguments: " + err.Error()), nil
		}
	}

	if req.TicketScoped && caller.Role == RoleAgent {
		decision, err := g.checkTicketAccess(ctx, caller, refs.TicketID)
		if err != nil || !decision.Allowed {
			return decision, err
		}
	}

	if req.TargetMustBeAgent {
		decision, err := g.checkTargetIsAgent(ctx, refs.UserID)
		if err != nil || !decision.Allowed {
			return decision, err
		}
	}

	return Allow(), nil
}

// checkTicketAccess verifies the agent is assigned to the ticket or belongs
// to its team.
func (g *Gate) checkTicketAccess(ctx context.Context, caller Identity, ticketID string) (Decision, error) {
	if ticketID == "" {
		return Deny("ticket id is required"), nil
	}

	ticket, err := store.GetTicketByID(ctx, g.db, ticketID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load ticket: %w", err)
	}
	if ticket == nil {
		return Deny("ticket not found"), nil
	}

	if ticket.AssignedTo != nil && *ticket.AssignedTo == caller.UserID {
		return Allow(), nil
	}

	if ticket.TeamID != nil {
		teamIDs, err := store.ListTeamIDsForUser(ctx, g.db, caller.UserID)
		if err != nil {
			return Decision{}, fmt.Errorf("failed to load team memberships: %w", err)
		}
		if slices.Contains(teamIDs, *ticket.TeamID) {
			return Allow(), nil
		}
	}

	g.logger.Debug("ticket access denied", "user_id", caller.UserID, "ticket_id", ticketID)
	return Deny("you can only modify tickets assigned to you or your team"), nil
}

// checkTargetIsAgent verifies the referenced user holds the agent role.
func (g *Gate) checkTargetIsAgent(ctx context.Context, userID string) (Decision, error) {
	if userID == "" {
		return Deny("user id is required"), nil
	}

	profile, err := store.GetProfileByID(ctx, g.db, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil || Role(profile.Role) != RoleAgent {
		return Deny("only agents can be added to teams"), nil
	}

	return Allow(), nil
}

func roleList(roles []Role) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += " or "
		}
		out += string(r)
	}
	return out
}
