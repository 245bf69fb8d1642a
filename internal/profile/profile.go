// Package profile manages the author's professional profile, which tailors
// every generated piece to their role, goals and projects.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/content-agent/internal/schemas"
)

// DirName is the per-user directory holding the profile and session database.
const DirName = ".agentic-content-generation"

// FileName is the profile file inside DirName.
const FileName = "profile.yaml"

// placeholderProject is the name of the sample project in the default profile.
const placeholderProject = "Project Name"

// Project is a piece of work the author wants mentioned in content.
type Project struct {
	Name         string `yaml:"name" json:"name" validate:"required"`
	Description  string `yaml:"description" json:"description"`
	Technologies string `yaml:"technologies" json:"technologies"`
	URL          string `yaml:"url" json:"url"`
}

// UserProfile is the author's professional profile.
type UserProfile struct {
	Name         string   `yaml:"name" json:"name" validate:"required"`
	TargetRole   string   `yaml:"target_role" json:"target_role" validate:"required"`
	Expertise    []string `yaml:"expertise_areas" json:"expertise_areas,omitempty"`
	ContentGoals []string `yaml:"content_goals" json:"content_goals,omitempty"`

	Region           string   `yaml:"region" json:"region"`
	Languages        []string `yaml:"languages" json:"languages,omitempty"`
	TargetIndustries []string `yaml:"target_industries" json:"target_industries,omitempty"`

	GitHubUsername string `yaml:"github_username" json:"github_username"`
	LinkedInURL    string `yaml:"linkedin_url" json:"linkedin_url" validate:"omitempty,url"`
	PortfolioURL   string `yaml:"portfolio_url" json:"portfolio_url" validate:"omitempty,url"`
	KaggleUsername string `yaml:"kaggle_username" json:"kaggle_username"`

	NotableProjects []Project `yaml:"notable_projects" json:"notable_projects,omitempty" validate:"dive"`
	PrimarySkills   []string  `yaml:"primary_skills" json:"primary_skills,omitempty"`

	ContentTone      string `yaml:"content_tone" json:"content_tone"`
	UseEmojis        bool   `yaml:"use_emojis" json:"use_emojis"`
	PostingFrequency string `yaml:"posting_frequency" json:"posting_frequency"`

	UniqueValueProposition string   `yaml:"unique_value_proposition" json:"unique_value_proposition"`
	KeyDifferentiators     []string `yaml:"key_differentiators" json:"key_differentiators,omitempty"`
}

// Default returns the starter profile users are expected to customise.
func Default() *UserProfile {
	return &UserProfile{
		Name:         "Your Name",
		TargetRole:   "AI Consultant",
		Expertise:    []string{"Machine Learning", "Artificial Intelligence", "Deep Learning"},
		ContentGoals: []string{"opportunities", "credibility", "visibility"},

		Region:           "Europe",
		Languages:        []string{"English"},
		TargetIndustries: []string{"Technology", "Finance", "Healthcare", "Consulting"},

		NotableProjects: []Project{{
			Name:         placeholderProject,
			Description:  "Brief description of what you built",
			Technologies: "PyTorch, FastAPI, Docker",
			URL:          "https://github.com/username/project",
		}},
		PrimarySkills: []string{"Python", "PyTorch", "TensorFlow", "Scikit-learn", "MLflow"},

		ContentTone:      "professional-conversational",
		UseEmojis:        true,
		PostingFrequency: "2-3x per week",

		UniqueValueProposition: "I help companies turn AI research into production-ready solutions",
		KeyDifferentiators: []string{
			"Bridging research and production",
			"End-to-end AI implementation",
			"Business-focused technical expertise",
		},
	}
}

// DefaultPath returns ~/.agentic-content-generation/profile.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Dir returns the per-user data directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Load reads a profile from path. A missing or empty file yields the default
// profile. Fields absent from the file keep their default values and unknown
// keys are ignored.
func Load(path string) (*UserProfile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Default(), nil
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return p, nil
}

// Save writes the profile as YAML, creating the parent directory.
func (p *UserProfile) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profile %s: %w", path, err)
	}
	return nil
}

// Validate checks struct tags, then the embedded profile JSON schema.
func (p *UserProfile) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return err
	}
	return schemas.ValidateDocument(schemas.Profile, p)
}

// Summary renders the profile block embedded in the user message.
func (p *UserProfile) Summary() string {
	skills := p.PrimarySkills
	if len(skills) > 5 {
		skills = skills[:5]
	}

	var sb strings.Builder
	sb.WriteString("**Professional Profile**:\n")
	fmt.Fprintf(&sb, "- Role: %s\n", p.TargetRole)
	fmt.Fprintf(&sb, "- Expertise: %s\n", strings.Join(p.Expertise, ", "))
	fmt.Fprintf(&sb, "- Key Skills: %s\n", strings.Join(skills, ", "))
	fmt.Fprintf(&sb, "- Region: %s\n", p.Region)
	fmt.Fprintf(&sb, "- Content Goals: %s\n", strings.Join(p.ContentGoals, ", "))
	fmt.Fprintf(&sb, "- Value Proposition: %s\n", p.UniqueValueProposition)
	fmt.Fprintf(&sb, "- Tone: %s\n", p.ContentTone)

	if p.GitHubUsername != "" {
		fmt.Fprintf(&sb, "- GitHub: github.com/%s\n", p.GitHubUsername)
	}
	if p.LinkedInURL != "" {
		fmt.Fprintf(&sb, "- LinkedIn: %s\n", p.LinkedInURL)
	}

	if len(p.NotableProjects) > 0 && p.NotableProjects[0].Name != placeholderProject {
		sb.WriteString("\n**Notable Projects to Mention**:\n")
		projects := p.NotableProjects
		if len(projects) > 3 {
			projects = projects[:3]
		}
		for _, pr := range projects {
			fmt.Fprintf(&sb, "- %s: %s (%s)\n", pr.Name, pr.Description, pr.Technologies)
		}
	}
	return sb.String()
}

// PrimaryGoal returns the first content goal, or "opportunities".
func (p *UserProfile) PrimaryGoal() string {
	if len(p.ContentGoals) > 0 && p.ContentGoals[0] != "" {
		return p.ContentGoals[0]
	}
	return "opportunities"
}
