package generation

import (
	"strings"

	"github.com/jonathan/content-agent/internal/profile"
	"github.com/jonathan/content-agent/internal/prompts"
)

// DefaultAudience is used when a request names no audience.
const DefaultAudience = "researchers and professionals"

// DefaultPlatforms are targeted when a request names none.
var DefaultPlatforms = []string{"blog", "linkedin", "twitter"}

// BuildUserMessage renders the opening user message of a run. Empty tone
// falls back to the profile's tone, empty audience to DefaultAudience.
func BuildUserMessage(topic string, platforms []string, tone, audience string, p *profile.UserProfile) string {
	if p == nil {
		p = profile.Default()
	}
	if len(platforms) == 0 {
		platforms = DefaultPlatforms
	}
	if tone == "" {
		tone = p.ContentTone
	}
	if audience == "" {
		audience = DefaultAudience
	}
	return prompts.Format(prompts.MustGet(prompts.UserFile, "user-message"), map[string]string{
		"Topic":     topic,
		"Platforms": strings.Join(platforms, ", "),
		"Tone":      tone,
		"Audience":  audience,
		"Profile":   strings.TrimSpace(p.Summary()),
	})
}
