package types

import (
	"github.com/go-playground/validator/v10"
)

// GenerateRequest is the input of a content generation run.
type GenerateRequest struct {
	Topic          string   `json:"topic" validate:"required,min=3,max=300"`
	Platforms      []string `json:"platforms,omitempty" validate:"omitempty,max=3,dive,required"`
	Tone           string   `json:"tone,omitempty" validate:"max=100"`
	TargetAudience string   `json:"target_audience,omitempty" validate:"max=200"`
	SessionID      string   `json:"session_id,omitempty" validate:"omitempty,uuid"`
}

// Validate validates the GenerateRequest using the validator.
func (r *GenerateRequest) Validate() error {
	return validator.New().Struct(r)
}

// GenerateResponse is the outcome of a completed generation run.
type GenerateResponse struct {
	SessionID    string            `json:"session_id"`
	RunID        string            `json:"run_id"`
	FinalContent string            `json:"final_content"`
	Outputs      map[string]string `json:"outputs"`
	Order        []string          `json:"order"`
	OutputFile   string            `json:"output_file,omitempty"`
}
