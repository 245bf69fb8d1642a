// Package observability renders verbose CLI output: stage progress, scores
// and search results drawn as boxes.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/jonathan/content-agent/internal/pipeline"
	"github.com/jonathan/content-agent/internal/types"
)

const (
	// boxWidth is the outer width of every box
	boxWidth = 72
	// maxItemsToShow caps list sections
	maxItemsToShow = 5
	// previewChars is how much of a stage output is shown
	previewChars = 240
)

// Printer handles formatted output for verbose mode. It also implements
// pipeline.Observer so it can be attached to a run directly.
type Printer struct {
	out   io.Writer
	box   lipgloss.Style
	title lipgloss.Style
	ok    lipgloss.Style
	bad   lipgloss.Style
	muted lipgloss.Style
}

var _ pipeline.Observer = (*Printer)(nil)

// NewPrinter creates a Printer writing to out. Colors are only emitted when
// out is a terminal.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out: out,
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(boxWidth - 2),
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("#9ece6a")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("#f7768e")),
		muted: r.NewStyle().Foreground(lipgloss.Color("#565f89")),
	}
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title, content string) {
	body := p.title.Render(title)
	if content != "" {
		body += "\n\n" + content
	}
	fmt.Fprintln(p.out, p.box.Render(body))
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

// StageStarted implements pipeline.Observer.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) StageStarted(e pipeline.StageEvent) {
	fmt.Fprintln(p.out, p.muted.Render(fmt.Sprintf("▶ Step %d/%d: %s", e.Index+1, e.Total, e.Stage)))
}

// StageCompleted implements pipeline.Observer.
func (p *Printer) StageCompleted(e pipeline.StageEvent) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Output:   %s (%d chars)\n", e.OutputKey, len(e.Output))
	fmt.Fprintf(&sb, "Duration: %s\n", e.Duration.Round(time.Millisecond))
	if len(e.ToolCalls) > 0 {
		names := make([]string, 0, len(e.ToolCalls))
		for _, c := range e.ToolCalls {
			names = append(names, c.Name)
		}
		fmt.Fprintf(&sb, "Tools:    %s\n", strings.Join(names, ", "))
	}
	if e.Output != "" {
		sb.WriteString("\n" + p.muted.Render(truncate(e.Output, previewChars)))
	}
	p.printBox(p.ok.Render("✓ ")+e.Stage, strings.TrimSuffix(sb.String(), "\n"))
}

// StageFailed implements pipeline.Observer.
func (p *Printer) StageFailed(e pipeline.StageEvent) {
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	p.printBox(p.bad.Render("✗ ")+e.Stage, msg)
}

// PrintScore outputs an opportunity score breakdown.
func (p *Printer) PrintScore(s *types.ScoreBreakdown) {
	if s == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Opportunity: %d/100 (%s)\n\n", s.Opportunity, s.Grade)
	fmt.Fprintf(&sb, "  SEO          %3d\n", s.SEO)
	fmt.Fprintf(&sb, "  Engagement   %3d\n", s.Engagement)
	fmt.Fprintf(&sb, "  Value        %3d\n", s.Value)
	fmt.Fprintf(&sb, "  Portfolio    %3d\n", s.Portfolio)

	if len(s.Suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		for _, sg := range s.Suggestions {
			fmt.Fprintf(&sb, "  • %s\n", sg)
		}
	}

	p.printBox("OPPORTUNITY SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPapers outputs the first few search results.
func (p *Printer) PrintPapers(papers []types.Paper) {
	if len(papers) == 0 {
		p.printBox("PAPERS", "No papers found.")
		return
	}

	var sb strings.Builder
	count := min(len(papers), maxItemsToShow)
	for i := 0; i < count; i++ {
		paper := papers[i]
		fmt.Fprintf(&sb, "%d. %s\n", i+1, truncate(paper.Title, boxWidth-8))
		line := paper.AuthorLine()
		if y := paper.Year(); y != "" {
			line += " (" + y + ")"
		}
		fmt.Fprintf(&sb, "   %s\n", line)
		if paper.Link != "" {
			fmt.Fprintf(&sb, "   %s\n", p.muted.Render(paper.Link))
		}
	}
	if len(papers) > maxItemsToShow {
		fmt.Fprintf(&sb, "\n... and %d more", len(papers)-maxItemsToShow)
	}

	p.printBox(fmt.Sprintf("PAPERS (%d)", len(papers)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSummary outputs where a finished run left its results.
func (p *Printer) PrintSummary(resp *types.GenerateResponse) {
	if resp == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Session: %s\n", resp.SessionID)
	fmt.Fprintf(&sb, "Run:     %s\n", resp.RunID)
	if resp.OutputFile != "" {
		fmt.Fprintf(&sb, "File:    %s\n", resp.OutputFile)
	}
	if len(resp.Order) > 0 {
		sb.WriteString("\nOutputs:\n")
		for _, key := range resp.Order {
			fmt.Fprintf(&sb, "  • %-22s %6d chars\n", key, len(resp.Outputs[key]))
		}
	}

	p.printBox("CONTENT GENERATED", strings.TrimSuffix(sb.String(), "\n"))
}
