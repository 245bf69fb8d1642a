package types

// Tool result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ToolResult is the status/payload envelope every helper tool returns to the model.
// Validation failures travel as Status "error" with a Message instead of a Go error,
// so the model can read and react to them.
type ToolResult struct {
	Status  string         `json:"status"`
	Message string         `json:"error_message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Success builds a successful result carrying data.
func Success(data map[string]any) ToolResult {
	if data == nil {
		data = map[string]any{}
	}
	return ToolResult{Status: StatusSuccess, Data: data}
}

// Failure builds an error result from err.
func Failure(err error) ToolResult {
	return ToolResult{Status: StatusError, Message: err.Error()}
}

// OK reports whether the result is a success.
func (r ToolResult) OK() bool {
	return r.Status == StatusSuccess
}

// Map flattens the result into a single map, the shape used for function-call responses.
func (r ToolResult) Map() map[string]any {
	out := make(map[string]any, len(r.Data)+2)
	for k, v := range r.Data {
		out[k] = v
	}
	out["status"] = r.Status
	if r.Message != "" {
		out["error_message"] = r.Message
	}
	return out
}
