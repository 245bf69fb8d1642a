package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jonathan/content-agent/internal/tools"
)

// maxToolBody bounds tool argument payloads.
const maxToolBody = 1 << 20

type toolInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []paramInfo `json:"params"`
}

type paramInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	names := s.tools.Names()
	out := make([]toolInfo, 0, len(names))
	for _, name := range names {
		t, err := s.tools.Get(name)
		if err != nil {
			continue
		}
		info := toolInfo{Name: t.Name, Description: t.Description, Params: make([]paramInfo, 0, len(t.Params))}
		for _, p := range t.Params {
			info.Params = append(info.Params, paramInfo{Name: p.Name, Type: p.Type, Description: p.Description, Required: p.Required})
		}
		out = append(out, info)
	}
	writeJSON(w, s.log, http.StatusOK, map[string]any{"tools": out})
}

// handleInvokeTool runs a registered tool with the JSON object body as its
// arguments. Tool-level failures come back as 200 with status "error".
func (s *Server) handleInvokeTool(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxToolBody))
	if err := dec.Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, s.log, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	result, err := s.tools.Invoke(r.Context(), r.PathValue("name"), args)
	if err != nil {
		var unknown *tools.UnknownToolError
		if errors.As(err, &unknown) {
			writeError(w, s.log, http.StatusNotFound, err.Error())
			return
		}
		s.errorResponse(w, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, result.Map())
}
