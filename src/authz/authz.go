// Package authz decides whether a caller may invoke a tool before the tool
// body runs. Denials are values, not errors: they are reported back to the
// model as failed tool results and never abort the loop.
package authz

// Role is a profile role.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
	RoleAdmin    Role = "admin"
)

// IsStaff reports whether the role belongs to support staff.
func (r Role) IsStaff() bool {
	return r == RoleAgent || r == RoleAdmin
}

// Identity is the caller on whose behalf the agent loop runs. It is fixed for
// the lifetime of a session and never changes mid-conversation.
type Identity struct {
	UserID string
	Role   Role
}

// Requirement declares what a tool demands of its caller.
type Requirement struct {
	// Roles lists the roles permitted to invoke the tool.
	Roles []Role
	// TicketScoped requires agent callers to be assigned to the referenced
	// ticket or belong to its team. Admins bypass the check.
	TicketScoped bool
	// TargetMustBeAgent requires the referenced user to hold the agent role.
	TargetMustBeAgent bool
}

// StaffOnly is the requirement shared by the ticket tools that do not touch
// an existing ticket.
func StaffOnly() Requirement {
	return Requirement{Roles: []Role{RoleAgent, RoleAdmin}}
}

// TicketScoped is the requirement for tools mutating an existing ticket.
func TicketScoped() Requirement {
	return Requirement{Roles: []Role{RoleAgent, RoleAdmin}, TicketScoped: true}
}

// AdminOnly is the requirement for user and team management tools.
func AdminOnly() Requirement {
	return Requirement{Roles: []Role{RoleAdmin}}
}

// AdminAddingAgent is the requirement for adding a team member.
func AdminAddingAgent() Requirement {
	return Requirement{Roles: []Role{RoleAdmin}, TargetMustBeAgent: true}
}

// Decision is the gate's verdict for one tool call.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns a permitting decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision with a human-readable reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}
