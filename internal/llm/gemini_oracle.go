package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/jonathan/content-agent/internal/tools"
)

// ErrToolRoundsExceeded is returned when a model keeps calling tools past the configured bound.
var ErrToolRoundsExceeded = errors.New("model exceeded tool call rounds")

// defaultTurn is sent when a stage has no conversation to answer.
const defaultTurn = "Proceed with your task."

// Respond implements Oracle. The stage instruction becomes the system
// instruction, the conversation is replayed as chat history and tool calls
// are executed locally until the model answers with text.
func (c *GeminiClient) Respond(ctx context.Context, req Request) (*Response, error) {
	model, err := c.model(req.Tier)
	if err != nil {
		return nil, err
	}
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.Instruction)}}
	if decls := declarations(req.Tools); len(decls) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	history, turn := splitConversation(req.Conversation)
	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, turn...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	maxRounds := c.config.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}

	out := &Response{}
	for round := 0; ; round++ {
		text, calls, err := splitResponse(resp)
		if err != nil {
			return nil, err
		}
		if len(calls) == 0 {
			out.Text = text
			return out, nil
		}
		if round >= maxRounds {
			return nil, fmt.Errorf("%w (%d)", ErrToolRoundsExceeded, maxRounds)
		}

		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			result := c.dispatch(ctx, req.Tools, call, out)
			replies = append(replies, genai.FunctionResponse{Name: call.Name, Response: result})
		}
		resp, err = cs.SendMessage(ctx, replies...)
		if err != nil {
			return nil, fmt.Errorf("failed to send tool results: %w", err)
		}
	}
}

func (c *GeminiClient) dispatch(ctx context.Context, available []tools.Tool, call genai.FunctionCall, out *Response) map[string]any {
	if call.Name == FinalValueTool {
		if v, ok := call.Args["value"].(string); ok {
			out.FinalValue = v
		}
		return map[string]any{"status": "success"}
	}
	result := invokeTool(ctx, available, call.Name, call.Args)
	out.ToolCalls = append(out.ToolCalls, ToolCall{Name: call.Name, Args: call.Args, Result: result})
	return result
}

// splitConversation turns all but the last user turn into chat history and
// returns the parts to send. Gemini history must alternate roles, so
// consecutive turns from the same role are merged.
func splitConversation(conv []Message) ([]*genai.Content, []genai.Part) {
	if len(conv) == 0 || conv[len(conv)-1].Role != RoleUser {
		return toHistory(conv), []genai.Part{genai.Text(defaultTurn)}
	}
	last := conv[len(conv)-1]
	return toHistory(conv[:len(conv)-1]), []genai.Part{genai.Text(last.Text)}
}

func toHistory(conv []Message) []*genai.Content {
	var history []*genai.Content
	for _, m := range conv {
		role := string(RoleUser)
		if m.Role == RoleModel {
			role = string(RoleModel)
		}
		if n := len(history); n > 0 && history[n-1].Role == role {
			history[n-1].Parts = append(history[n-1].Parts, genai.Text(m.Text))
			continue
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Text)}})
	}
	// History handed to a chat must start with a user turn.
	if len(history) > 0 && history[0].Role != string(RoleUser) {
		history = append([]*genai.Content{{Role: string(RoleUser), Parts: []genai.Part{genai.Text(defaultTurn)}}}, history...)
	}
	return history
}

// declarations converts tools to Gemini function declarations, adding the
// final-value pseudo tool whenever any tools are present.
func declarations(ts []tools.Tool) []*genai.FunctionDeclaration {
	if len(ts) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, 0, len(ts)+1)
	for _, t := range ts {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  objectSchema(t.Params),
		})
	}
	decls = append(decls, &genai.FunctionDeclaration{
		Name:        FinalValueTool,
		Description: "Set the final output of this step explicitly.",
		Parameters: objectSchema([]tools.Param{
			{Name: "value", Type: tools.TypeString, Description: "The complete final output", Required: true},
		}),
	})
	return decls
}

func objectSchema(params []tools.Param) *genai.Schema {
	s := &genai.Schema{Type: genai.TypeObject, Properties: make(map[string]*genai.Schema, len(params))}
	for _, p := range params {
		s.Properties[p.Name] = paramSchema(p)
		if p.Required {
			s.Required = append(s.Required, p.Name)
		}
	}
	return s
}

func paramSchema(p tools.Param) *genai.Schema {
	s := &genai.Schema{Type: schemaType(p.Type), Description: p.Description}
	if p.Type == tools.TypeArray {
		if p.Items == tools.TypeObject {
			s.Items = objectSchema(p.Properties)
		} else {
			s.Items = &genai.Schema{Type: schemaType(p.Items)}
		}
	}
	return s
}

func schemaType(t string) genai.Type {
	switch t {
	case tools.TypeInteger:
		return genai.TypeInteger
	case tools.TypeArray:
		return genai.TypeArray
	case tools.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
