// Package presenter renders workflow results for the terminal.
package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/thruflo/nodewars/internal/api"
	"github.com/thruflo/nodewars/internal/reference"
	"github.com/thruflo/nodewars/internal/workflow"
)

var (
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	gray   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	label  = lipgloss.NewStyle().Bold(true).Width(12)
)

var stateStyles = map[reference.State]lipgloss.Style{
	reference.StateSaved:     gray,
	reference.StateActive:    cyan,
	reference.StateQueued:    yellow,
	reference.StateFinal:     green,
	reference.StateCompleted: green,
}

// Presenter writes human-readable output.
type Presenter struct {
	out io.Writer
}

var _ workflow.Reporter = (*Presenter)(nil)

// New creates a Presenter writing to out.
func New(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

func (p *Presenter) println(a ...interface{}) {
	fmt.Fprintln(p.out, a...)
}

func (p *Presenter) field(name, value string) {
	if value == "" {
		return
	}
	p.println(label.Render(name) + value)
}

// Challenge prints challenge metadata with the local state, or NOT SAVED
// when state is empty. The training language is highlighted.
func (p *Presenter) Challenge(c *api.Challenge, state reference.State, language string) {
	p.println(cyan.Render(c.Name) + "  " + rankBadge(c.Rank))

	if state == "" {
		p.field("state", gray.Render("NOT SAVED"))
	} else {
		p.field("state", stateStyles[state].Render(string(state)))
	}
	p.field("slug", c.Slug)
	p.field("id", c.ID)
	p.field("category", c.Category)
	p.field("author", c.CreatedBy.Username)
	p.field("url", workflow.KataURL(c))
	if len(c.Tags) > 0 {
		p.field("tags", strings.Join(c.Tags, ", "))
	}
	if len(c.Languages) > 0 {
		langs := make([]string, len(c.Languages))
		for i, l := range c.Languages {
			if strings.EqualFold(l, language) {
				l = green.Render(l)
			}
			langs[i] = l
		}
		p.field("languages", strings.Join(langs, ", "))
	}
	p.field("completed", fmt.Sprintf("%d of %d attempts (%.1f%%)", c.TotalCompleted, c.TotalAttempts, c.CompletionRate()))
	if c.Description != "" {
		p.println()
		for _, line := range workflow.WrapText(excerpt(c.Description, descriptionExcerpt), 76) {
			p.println(gray.Render(line))
		}
	}
}

const descriptionExcerpt = 330

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimRight(string(r[:n]), " ") + "…"
}

func rankBadge(r api.Rank) string {
	if r.Name == "" {
		return yellow.Render("[beta]")
	}
	style := lipgloss.NewStyle().Bold(true)
	if r.Color != "" {
		if c, ok := rankColors[r.Color]; ok {
			style = style.Foreground(c)
		}
	}
	return style.Render("[" + r.Name + "]")
}

var rankColors = map[string]lipgloss.Color{
	"white":  lipgloss.Color("15"),
	"yellow": lipgloss.Color("11"),
	"blue":   lipgloss.Color("12"),
	"purple": lipgloss.Color("13"),
}

// Saved confirms a challenge was recorded locally.
func (p *Presenter) Saved(rec reference.Record) {
	p.println(green.Render("✓ Saved ") + rec.Slug + gray.Render(" ("+string(rec.State)+")"))
}

// Records prints local records, grouped by state in lifecycle order.
func (p *Presenter) Records(records []reference.Record) {
	if len(records) == 0 {
		p.println(gray.Render("No challenges recorded yet. Run 'nodewars next' to start one."))
		return
	}

	grouped := make(map[reference.State][]reference.Record)
	for _, rec := range records {
		grouped[rec.State] = append(grouped[rec.State], rec)
	}
	first := true
	for _, st := range reference.States {
		recs := grouped[st]
		if len(recs) == 0 {
			continue
		}
		if !first {
			p.println()
		}
		first = false
		p.println(stateStyles[st].Render(fmt.Sprintf("%s (%d)", st, len(recs))))
		width := 0
		for _, rec := range recs {
			if n := len(rec.Slug); n > width {
				width = n
			}
		}
		slug := lipgloss.NewStyle().Width(width).Align(lipgloss.Right)
		for _, rec := range recs {
			url := workflow.KataURL(&api.Challenge{Slug: rec.Slug})
			p.println("  " + slug.Render(rec.Slug) + gray.Render("  "+url))
		}
	}
}

// Strategies prints the train-next strategies.
func (p *Presenter) Strategies(strategies []workflow.StrategyInfo) {
	width := 0
	for _, s := range strategies {
		if n := len(s.Name); n > width {
			width = n
		}
	}
	name := lipgloss.NewStyle().Bold(true).Width(width + 2)
	for _, s := range strategies {
		p.println(name.Render(string(s.Name)) + gray.Render(s.Description))
	}
}

// TrainingStarted implements workflow.Reporter.
func (p *Presenter) TrainingStarted(ts *api.TrainingSession, codePath string) {
	p.println(cyan.Render("● ") + "Training " + ts.Name + gray.Render(" ("+ts.Slug+")"))
	p.println(gray.Render("  Write your solution below the begin-code line in:"))
	p.println("  " + codePath)
	p.println(gray.Render("  Then run 'nodewars submit " + ts.Slug + "'."))
}

// EvaluationPassed implements workflow.Reporter.
func (p *Presenter) EvaluationPassed(rec reference.Record, result *api.EvaluationResult) {
	p.println(green.Render("✓ All tests passed!") + gray.Render(fmt.Sprintf(" (%.0fms)", result.WallTime)))
	p.output(result)
	p.println(cyan.Render("→ Run 'nodewars finalize " + rec.Slug + "' to publish your solution."))
}

// EvaluationFailed implements workflow.Reporter.
func (p *Presenter) EvaluationFailed(rec reference.Record, result *api.EvaluationResult) {
	p.println(red.Render("✗ Tests failed"))
	if result.Reason != "" {
		p.println(result.Reason)
	}
	p.output(result)
	p.println(gray.Render("Edit your code and run 'nodewars submit " + rec.Slug + "' again."))
}

// Finalized implements workflow.Reporter.
func (p *Presenter) Finalized(rec reference.Record, c *api.Challenge) {
	p.println(green.Render("✓ Completed ") + c.Name + gray.Render(" ("+rec.Slug+")"))
	p.println(gray.Render("  " + workflow.KataURL(c)))
}

// NotFinal hints at what to do when finalize was refused.
func (p *Presenter) NotFinal(identifier string) {
	p.println(yellow.Render("Only a passing solution can be finalized. Run 'nodewars submit " + identifier + "' first."))
}

func (p *Presenter) output(result *api.EvaluationResult) {
	for _, line := range result.OutputLines() {
		switch {
		case strings.HasPrefix(line, "<PASSED::>"):
			p.println(green.Render("  ✓ ") + strings.TrimPrefix(line, "<PASSED::>"))
		case strings.HasPrefix(line, "<FAILED::>"):
			p.println(red.Render("  ✗ ") + strings.TrimPrefix(line, "<FAILED::>"))
		case strings.HasPrefix(line, "<ERROR::>"):
			p.println(red.Render("  ! ") + strings.TrimPrefix(line, "<ERROR::>"))
		default:
			p.println(gray.Render("  " + line))
		}
	}
}
