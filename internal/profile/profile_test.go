package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, "AI Consultant", p.TargetRole)
	assert.Equal(t, "professional-conversational", p.ContentTone)
	assert.Equal(t, "opportunities", p.PrimaryGoal())
	require.NoError(t, p.Validate())
}

func TestSummary(t *testing.T) {
	t.Run("default hides placeholder project", func(t *testing.T) {
		s := Default().Summary()
		assert.True(t, strings.HasPrefix(s, "**Professional Profile**:\n- Role: AI Consultant\n"))
		assert.Contains(t, s, "- Key Skills: Python, PyTorch, TensorFlow, Scikit-learn, MLflow\n")
		assert.NotContains(t, s, "Notable Projects")
		assert.NotContains(t, s, "GitHub")
	})

	t.Run("links and projects", func(t *testing.T) {
		p := Default()
		p.GitHubUsername = "ada"
		p.LinkedInURL = "https://linkedin.com/in/ada"
		p.PrimarySkills = []string{"a", "b", "c", "d", "e", "f"}
		p.NotableProjects = []Project{
			{Name: "One", Description: "first", Technologies: "Go"},
			{Name: "Two", Description: "second", Technologies: "Rust"},
			{Name: "Three", Description: "third", Technologies: "C"},
			{Name: "Four", Description: "fourth", Technologies: "Zig"},
		}

		s := p.Summary()
		assert.Contains(t, s, "- Key Skills: a, b, c, d, e\n")
		assert.Contains(t, s, "- GitHub: github.com/ada\n")
		assert.Contains(t, s, "- LinkedIn: https://linkedin.com/in/ada\n")
		assert.Contains(t, s, "**Notable Projects to Mention**:\n- One: first (Go)\n")
		assert.Contains(t, s, "- Three: third (C)\n")
		assert.NotContains(t, s, "Four")
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content *string
		check   func(t *testing.T, p *UserProfile)
		errMsg  string
	}{
		{
			name:    "missing file gives default",
			content: nil,
			check: func(t *testing.T, p *UserProfile) {
				assert.Equal(t, Default(), p)
			},
		},
		{
			name:    "empty file gives default",
			content: ptr("  \n"),
			check: func(t *testing.T, p *UserProfile) {
				assert.Equal(t, "Your Name", p.Name)
			},
		},
		{
			name:    "partial file keeps defaults and ignores unknown keys",
			content: ptr("name: Ada\ntarget_role: ML Engineer\nfavourite_colour: green\n"),
			check: func(t *testing.T, p *UserProfile) {
				assert.Equal(t, "Ada", p.Name)
				assert.Equal(t, "ML Engineer", p.TargetRole)
				assert.Equal(t, "Europe", p.Region)
			},
		},
		{
			name:    "malformed yaml",
			content: ptr("name: [unterminated\n"),
			errMsg:  "failed to parse profile",
		},
		{
			name:    "schema violation",
			content: ptr("name: Ada\ncontent_tone: shouty\n"),
			errMsg:  "invalid profile",
		},
		{
			name:    "bad url",
			content: ptr("linkedin_url: not a url\n"),
			errMsg:  "invalid profile",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "profile"+string(rune('a'+i))+".yaml")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o644))
			}
			p, err := Load(path)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", FileName)

	p := Default()
	p.Name = "Ada Lovelace"
	p.NotableProjects = []Project{{Name: "Engine", Description: "analytical", Technologies: "brass"}}
	require.NoError(t, p.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "target_role: AI Consultant")
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", DirName, FileName), path)
}

func ptr(s string) *string { return &s }
