// Package agent provides the tool abstraction and the registry the agent
// loop draws from when advertising and executing tools.
package agent

import (
	"context"
	"encoding/json"

	jsonschema "github.com/swaggest/jsonschema-go"

	"github.com/stackdesk/deskagent/src/aisdk"
	"github.com/stackdesk/deskagent/src/authz"
)

// Tool is the interface that all tools must implement
type Tool interface {
	// GetName returns the tool's name
	GetName() string

	// GetDescription returns the tool's description
	GetDescription() string

	// GetParameters returns the JSON schema for the tool's parameters
	GetParameters() *jsonschema.Schema

	// Requirement returns what the tool demands of its caller
	Requirement() authz.Requirement

	// ValidateArguments checks raw arguments against the tool's schema
	// without executing anything
	ValidateArguments(args json.RawMessage) error

	// Execute runs the tool with the given parameters
	Execute(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error)
}
