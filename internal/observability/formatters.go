// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/jonathan/career-pilot/internal/activity"
	"github.com/jonathan/career-pilot/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
}

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to width runes, marking the cut with "..."
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// FormatAmount renders a whole amount with thousands separators and a currency symbol when known
func FormatAmount(amount float64, currency string) string {
	whole := humanize.Comma(int64(math.Round(amount)))
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if sym, ok := currencySymbols[currency]; ok {
		return sym + whole
	}
	if currency == "" {
		return whole
	}
	return currency + " " + whole
}

// FormatSalary renders a salary range, e.g. "$150,000 - $190,000 (avg $170,000)"
func FormatSalary(s types.SalaryInsights) string {
	if s.Low == 0 && s.High == 0 && s.Average == 0 {
		return "n/a"
	}
	out := fmt.Sprintf("%s - %s", FormatAmount(s.Low, s.Currency), FormatAmount(s.High, s.Currency))
	if s.Average > 0 {
		out += fmt.Sprintf(" (avg %s)", FormatAmount(s.Average, s.Currency))
	}
	return out
}

// FormatScore renders a match score, "-" when absent
func FormatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", *score)
}

// PrintJobs outputs the discovered leads, one per block
func (p *Printer) PrintJobs(jobs []types.JobListing) {
	var sb strings.Builder
	if len(jobs) == 0 {
		sb.WriteString("No leads match.\n")
	}
	for i, job := range jobs {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. [%s] %s @ %s\n", i+1, FormatScore(job.MatchScore), job.Title, job.Company)
		fmt.Fprintf(&sb, "   %s  (id %s)\n", job.Location, job.ID)
		if job.URL != "" {
			fmt.Fprintf(&sb, "   %s\n", job.URL)
		}
		if job.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", job.Snippet)
		}
	}
	p.printBox(fmt.Sprintf("JOB LEADS (%d)", len(jobs)), sb.String())
}

// PrintJobAnalysis outputs a human-readable summary of a deep analysis.
func (p *Printer) PrintJobAnalysis(job types.JobListing, analysis *types.JobAnalysis) {
	if analysis == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Role:      %s @ %s\n", job.Title, job.Company)
	fmt.Fprintf(&sb, "Alignment: %s\n", FormatScore(&analysis.MatchScore))
	fmt.Fprintf(&sb, "Salary:    %s\n", FormatSalary(analysis.MarketResearch.SalaryInsights))
	if rating := analysis.MarketResearch.StabilityRating; rating != "" {
		fmt.Fprintf(&sb, "Stability: %s\n", rating)
	}
	sb.WriteString("\n")

	writeList(&sb, "Matching skills", analysis.MatchingSkills)
	writeList(&sb, "Missing skills", analysis.MissingSkills)
	writeList(&sb, "Resume tips", analysis.ResumeTips)

	if analysis.DecisionSummary != "" {
		sb.WriteString("Verdict:\n")
		fmt.Fprintf(&sb, "  %s\n", analysis.DecisionSummary)
	}

	p.printBox("JOB ANALYSIS", sb.String())
}

// PrintTracked outputs the tracking list with relative update times
func (p *Printer) PrintTracked(tracked []types.TrackedJob) {
	var sb strings.Builder
	if len(tracked) == 0 {
		sb.WriteString("Nothing tracked yet.\n")
	}
	for _, t := range tracked {
		fmt.Fprintf(&sb, "%-12s %s @ %s\n", t.Status, t.Title, t.Company)
		fmt.Fprintf(&sb, "             id %s, updated %s\n", t.ID, humanize.Time(t.UpdatedAt))
	}
	p.printBox(fmt.Sprintf("TRACKER (%d)", len(tracked)), sb.String())
}

// PrintActivity outputs activity lines, oldest first
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintActivity(lines []activity.Line) {
	for _, line := range lines {
		fmt.Fprintf(p.out, "%s  %s\n", line.At.Format("15:04:05"), line.Text)
	}
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s:\n", title)
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		fmt.Fprintf(sb, "  • %s\n", items[i])
	}
	if len(items) > maxItemsToShow {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-maxItemsToShow)
	}
	sb.WriteString("\n")
}
