package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Outcome classifies how a branch fared during a run.
type Outcome string

// Known outcomes.
const (
	OutcomeCompleted Outcome = "completed"
	OutcomePending   Outcome = "pending"
	OutcomePaused    Outcome = "paused"
	OutcomeFailed    Outcome = "failed"
	OutcomePlanned   Outcome = "planned"
)

const (
	summaryKeyValueTemplateConstant = "%s %s\n"
	summaryOutcomeTemplateConstant  = "  %s %s %s"
	summaryDetailTemplateConstant   = "(%s)"
	summaryBranchTemplateConstant   = "  %s\n"
	summaryHeadingTemplateConstant  = "%s\n"
	summaryKeySuffixConstant        = ":"
	summaryEmptyListMessageConstant = "no lesson branches found"
	summaryOutcomeWidthConstant     = 10
)

// BranchOutcome describes a single branch line in a summary.
type BranchOutcome struct {
	Branch  string
	Outcome Outcome
	Detail  string
}

// SummaryField is a labeled value printed under the summary heading.
type SummaryField struct {
	Label string
	Value string
}

// RunSummary captures what a run or a checkpoint inspection reports.
type RunSummary struct {
	Heading  string
	Fields   []SummaryField
	Outcomes []BranchOutcome
	Footer   string
}

// summaryStyleSet holds lipgloss styles for summaries.
type summaryStyleSet struct {
	heading lipgloss.Style
	key     lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	dim     lipgloss.Style
	accent  lipgloss.Style
}

func newSummaryStyleSet(colorEnabled bool) summaryStyleSet {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return summaryStyleSet{heading: plain, key: plain, success: plain, warning: plain, failure: plain, dim: plain, accent: plain}
	}
	return summaryStyleSet{
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		key:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}
}

// SummaryPrinter writes styled summaries to a writer.
type SummaryPrinter struct {
	writer io.Writer
	styles summaryStyleSet
}

// NewSummaryPrinter constructs a printer; colors apply only when colorEnabled is set.
func NewSummaryPrinter(writer io.Writer, colorEnabled bool) *SummaryPrinter {
	if writer == nil {
		writer = io.Discard
	}
	return &SummaryPrinter{writer: writer, styles: newSummaryStyleSet(colorEnabled)}
}

// PrintSummary renders the heading, fields, per-branch outcomes and footer.
func (printer *SummaryPrinter) PrintSummary(summary RunSummary) error {
	var builder strings.Builder
	if len(summary.Heading) > 0 {
		builder.WriteString(fmt.Sprintf(summaryHeadingTemplateConstant, printer.styles.heading.Render(summary.Heading)))
	}
	for _, field := range summary.Fields {
		builder.WriteString(fmt.Sprintf(summaryKeyValueTemplateConstant, printer.styles.key.Render(field.Label+summaryKeySuffixConstant), field.Value))
	}
	for _, outcome := range summary.Outcomes {
		builder.WriteString(printer.renderOutcome(outcome))
	}
	if len(summary.Footer) > 0 {
		builder.WriteString(fmt.Sprintf(summaryHeadingTemplateConstant, printer.styles.dim.Render(summary.Footer)))
	}
	_, writeError := io.WriteString(printer.writer, builder.String())
	return writeError
}

// PrintBranches renders one discovered branch name per line.
func (printer *SummaryPrinter) PrintBranches(branches []string) error {
	if len(branches) == 0 {
		_, writeError := fmt.Fprintf(printer.writer, summaryHeadingTemplateConstant, printer.styles.dim.Render(summaryEmptyListMessageConstant))
		return writeError
	}
	var builder strings.Builder
	for _, branch := range branches {
		builder.WriteString(fmt.Sprintf(summaryBranchTemplateConstant, branch))
	}
	_, writeError := io.WriteString(printer.writer, builder.String())
	return writeError
}

func (printer *SummaryPrinter) renderOutcome(outcome BranchOutcome) string {
	label := fmt.Sprintf("%-*s", summaryOutcomeWidthConstant, string(outcome.Outcome))
	detail := ""
	if len(outcome.Detail) > 0 {
		detail = printer.styles.dim.Render(fmt.Sprintf(summaryDetailTemplateConstant, outcome.Detail))
	}
	return strings.TrimRight(fmt.Sprintf(summaryOutcomeTemplateConstant, printer.outcomeStyle(outcome.Outcome).Render(label), outcome.Branch, detail), " ") + "\n"
}

func (printer *SummaryPrinter) outcomeStyle(outcome Outcome) lipgloss.Style {
	switch outcome {
	case OutcomeCompleted:
		return printer.styles.success
	case OutcomePaused:
		return printer.styles.warning
	case OutcomeFailed:
		return printer.styles.failure
	case OutcomePlanned:
		return printer.styles.accent
	default:
		return printer.styles.dim
	}
}

// IsTerminal reports whether the file is attached to a character device.
func IsTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	stat, statError := file.Stat()
	if statError != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
