// Package platform wraps drafted content in per-platform templates.
package platform

import (
	"errors"
	"fmt"
	"strings"
)

// Name identifies a publishing platform.
type Name string

// Supported platforms.
const (
	Blog     Name = "blog"
	LinkedIn Name = "linkedin"
	Twitter  Name = "twitter"
)

// All lists the supported platforms in their canonical order.
var All = []Name{Blog, LinkedIn, Twitter}

// threadPreview is how many characters of content open a thread.
const threadPreview = 250

// ErrUnsupportedPlatform is matched by every UnsupportedPlatformError.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// UnsupportedPlatformError reports a platform name outside All.
type UnsupportedPlatformError struct {
	Platform string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("Unsupported platform: %s. Use 'blog', 'linkedin', or 'twitter'.", e.Platform)
}

func (e *UnsupportedPlatformError) Unwrap() error {
	return ErrUnsupportedPlatform
}

// Formatted is content wrapped for one platform.
type Formatted struct {
	Platform Name              `json:"platform"`
	Text     string            `json:"formatted_content"`
	Metadata map[string]string `json:"metadata"`
}

// ToMap renders the result as a tool payload.
func (f *Formatted) ToMap() map[string]any {
	return map[string]any{
		"platform":          string(f.Platform),
		"formatted_content": f.Text,
		"metadata":          f.Metadata,
	}
}

// Normalize resolves a platform name case-insensitively.
func Normalize(name string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(name)))
	for _, p := range All {
		if p == n {
			return p, nil
		}
	}
	return "", &UnsupportedPlatformError{Platform: name}
}

// IsSupported reports whether name is a known platform.
func IsSupported(name string) bool {
	_, err := Normalize(name)
	return err == nil
}

// Format wraps content in the template for platform.
func Format(content, platform, topic string) (*Formatted, error) {
	p, err := Normalize(platform)
	if err != nil {
		return nil, err
	}

	var text string
	switch p {
	case Blog:
		text = fmt.Sprintf("# %s\n\n%s\n\n## References\n[Add citations here]\n",
			orDefault(topic, "Article Title"), content)
	case LinkedIn:
		text = fmt.Sprintf("🔬 %s\n\n%s\n\n💡 Key Takeaways:\n[Summarize 3-5 bullet points]\n\n"+
			"What are your thoughts? Share in the comments below! 👇\n\n#Research #Science #Innovation\n",
			orDefault(topic, "Professional Insight"), content)
	case Twitter:
		text = fmt.Sprintf("🧵 Thread: %s\n\n1/🧵 %s...\n\n[Continue thread - AI will expand this into full thread]\n\n#Research #Science\n",
			orDefault(topic, "Key Insights"), head(content, threadPreview))
	}

	return &Formatted{Platform: p, Text: text, Metadata: metadataFor(p)}, nil
}

func metadataFor(p Name) map[string]string {
	switch p {
	case Blog:
		return map[string]string{
			"format":        "markdown",
			"target_length": "1000-2000 words",
			"structure":     "Title → Introduction → Main sections with H2/H3 → Conclusion → References",
		}
	case LinkedIn:
		return map[string]string{
			"format":         "plain text with limited formatting",
			"target_length":  "300-800 words",
			"best_practices": "Start with hook, use line breaks, end with call-to-action",
		}
	default:
		return map[string]string{
			"format":         "thread (multiple tweets)",
			"target_length":  "280 characters per tweet",
			"best_practices": "Number tweets (1/n), use hooks, add relevant hashtags",
		}
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func head(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
