// Package desktools implements the fixed set of ticketing operations the
// assistant can call. Every tool is bound to a caller identity at
// construction time; a toolbox is built per session and never shared.
//
// Tool handlers never return Go errors for backend failures: every outcome
// is a result value with success=false so the model can read the failure and
// react, instead of the loop aborting.
package desktools

import "log/slog"

func ensureLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// BaseResult is the outcome shape shared by all tools.
type BaseResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// TicketResult is the outcome of a ticket operation.
type TicketResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	TicketID string `json:"ticketId,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UserResult is the outcome of a user operation.
type UserResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TeamResult is the outcome of a team operation.
type TeamResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TeamID  string `json:"teamId,omitempty"`
	Error   string `json:"error,omitempty"`
}

func failBase(message string, err error) BaseResult {
	out := BaseResult{Success: false, Message: message}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

func failTicket(message string, err error) TicketResult {
	out := TicketResult{Success: false, Message: message}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

func failUser(message string, err error) UserResult {
	out := UserResult{Success: false, Message: message}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

func failTeam(message string, err error) TeamResult {
	out := TeamResult{Success: false, Message: message}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}
