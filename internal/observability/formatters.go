// Package observability provides logging, metrics and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/job-tracker/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// dateLayout is how application dates are shown
	dateLayout = "Jan 2, 2006"
)

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
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// PrintStatistics outputs the per-status counts.
func (p *Printer) PrintStatistics(stats types.Statistics) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total:      %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("%-11s %d\n", types.StatusApplied.Label()+":", stats.Applied))
	sb.WriteString(fmt.Sprintf("%-11s %d\n", types.StatusInterview.Label()+":", stats.Interview))
	sb.WriteString(fmt.Sprintf("%-11s %d\n", types.StatusOffer.Label()+":", stats.Offer))
	sb.WriteString(fmt.Sprintf("%-11s %d", types.StatusRejected.Label()+":", stats.Rejected))

	p.printBox("APPLICATION STATISTICS", sb.String())
}

// PrintApplications outputs each application as a short card. An empty list
// prints a placeholder that depends on whether a search was active.
func (p *Printer) PrintApplications(apps []types.Application, query string) {
	title := fmt.Sprintf("APPLICATIONS (%d)", len(apps))
	if query != "" {
		title = fmt.Sprintf("APPLICATIONS MATCHING %q (%d)", query, len(apps))
	}

	if len(apps) == 0 {
		msg := "No applications yet. Add your first one with `tracker add`."
		if query != "" {
			msg = "No applications match your search."
		}
		p.printBox(title, msg)
		return
	}

	var sb strings.Builder
	for i, app := range apps {
		sb.WriteString(fmt.Sprintf("%s @ %s [%s]\n", app.Position, app.Company, app.Status.Label()))
		sb.WriteString(fmt.Sprintf("  Applied %s", app.DateApplied.Format(dateLayout)))
		if app.Location != "" {
			sb.WriteString(fmt.Sprintf(" · %s", app.Location))
		}
		sb.WriteString("\n")
		if app.Notes != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", app.Notes))
		}
		sb.WriteString(fmt.Sprintf("  id: %s", app.ID))
		if i < len(apps)-1 {
			sb.WriteString("\n\n")
		}
	}

	p.printBox(title, sb.String())
}

// PrintProfile outputs the user's profile. Missing optional fields are shown as "-".
func (p *Printer) PrintProfile(profile *types.Profile) {
	if profile == nil {
		p.printBox("PROFILE", "No profile found.")
		return
	}

	orDash := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}
	year := "-"
	if profile.GraduationYear != nil {
		year = fmt.Sprintf("%d", *profile.GraduationYear)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:        %s\n", orDash(profile.FullName)))
	sb.WriteString(fmt.Sprintf("Email:       %s\n", orDash(profile.Email)))
	sb.WriteString(fmt.Sprintf("University:  %s\n", orDash(profile.University)))
	sb.WriteString(fmt.Sprintf("Graduation:  %s\n", year))
	sb.WriteString(fmt.Sprintf("Major:       %s\n", orDash(profile.Major)))
	sb.WriteString(fmt.Sprintf("Phone:       %s", orDash(profile.Phone)))

	p.printBox("PROFILE", sb.String())
}
