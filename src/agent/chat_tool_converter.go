package agent

import (
	"github.com/stackdesk/deskagent/src/aisdk"
)

// ToChatTool converts a Tool to the chat completion API format
func ToChatTool(tool Tool) *aisdk.ChatTool {
	return &aisdk.ChatTool{
		Type: "function",
		Function: aisdk.ChatToolFunction{
			Name:        tool.GetName(),
			Description: tool.GetDescription(),
			Parameters:  tool.GetParameters(),
		},
	}
}

// ToChatTools converts tools to the chat completion API format, preserving
// order.
func ToChatTools(tools []Tool) []*aisdk.ChatTool {
	out := make([]*aisdk.ChatTool, 0, len(tools))
	for _, tool := range tools {
		out = append(out, ToChatTool(tool))
	}
	return out
}
