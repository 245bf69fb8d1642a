package llm

import (
	"context"

	"github.com/jonathan/content-agent/internal/tools"
)

// FinalValueTool is the pseudo tool a model calls to hand back a stage result
// explicitly instead of relying on its last text turn.
const FinalValueTool = "set_final_value"

// Role identifies the author of a conversation message.
type Role string

// Conversation roles.
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of the running conversation.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Request is everything one stage hands to the oracle.
type Request struct {
	Stage        string
	Instruction  string
	Tools        []tools.Tool
	Conversation []Message
	Tier         ModelTier
}

// ToolCall records a tool the model invoked while answering.
type ToolCall struct {
	Name   string         `json:"name"`
	Args   map[string]any `json:"args"`
	Result map[string]any `json:"result"`
}

// Response is the oracle's answer. FinalValue is set only when the model
// signalled a final value explicitly.
type Response struct {
	Text       string
	FinalValue string
	ToolCalls  []ToolCall
}

// Value returns the explicit final value if present, else the text.
func (r *Response) Value() string {
	if r.FinalValue != "" {
		return r.FinalValue
	}
	return r.Text
}

// Oracle produces a stage's output. Implementations own retries, rate
// limiting and model selection.
type Oracle interface {
	Respond(ctx context.Context, req Request) (*Response, error)
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(ctx context.Context, req Request) (*Response, error)

// Respond implements Oracle.
func (f OracleFunc) Respond(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// invokeTool runs a tool call against the request's tool set and returns the
// payload sent back to the model. Unknown names become error payloads.
func invokeTool(ctx context.Context, available []tools.Tool, name string, args map[string]any) map[string]any {
	for _, t := range available {
		if t.Name == name {
			return t.Call(ctx, args).Map()
		}
	}
	err := &tools.UnknownToolError{Name: name}
	return map[string]any{"status": "error", "error_message": err.Error()}
}
