package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/claudelint/pkg/core"
)

// fileIssues is the issues of one file, sorted by line.
type fileIssues struct {
	path   string
	issues []core.Issue
}

// byFile groups issues by file in order of first appearance.
func (r *Reporter) byFile() []fileIssues {
	var groups []fileIssues
	index := make(map[string]int)
	for _, res := range r.results {
		for _, list := range [][]core.Issue{res.Errors, res.Warnings} {
			for _, is := range list {
				i, ok := index[is.File]
				if !ok {
					i = len(groups)
					index[is.File] = i
					groups = append(groups, fileIssues{path: is.File})
				}
				groups[i].issues = append(groups[i].issues, is)
			}
		}
	}
	for _, g := range groups {
		sort.SliceStable(g.issues, func(a, b int) bool {
			return g.issues[a].Line < g.issues[b].Line
		})
	}
	return groups
}

type stylishStyles struct {
	file    lipgloss.Style
	muted   lipgloss.Style
	error   lipgloss.Style
	warning lipgloss.Style
	success lipgloss.Style
	bold    lipgloss.Style
}

func (r *Reporter) stylishStyles(w io.Writer) stylishStyles {
	lr := lipgloss.NewRenderer(w)
	lr.SetColorProfile(r.profile)
	return stylishStyles{
		file:    lr.NewStyle().Underline(true),
		muted:   lr.NewStyle().Foreground(lipgloss.Color("8")),
		error:   lr.NewStyle().Foreground(lipgloss.Color("1")),
		warning: lr.NewStyle().Foreground(lipgloss.Color("3")),
		success: lr.NewStyle().Foreground(lipgloss.Color("2")),
		bold:    lr.NewStyle().Bold(true),
	}
}

func (r *Reporter) renderStylish(w io.Writer) error {
	st := r.stylishStyles(w)
	var b strings.Builder

	for _, g := range r.byFile() {
		b.WriteString(st.file.Render(g.path))
		b.WriteString("\n")
		for _, is := range g.issues {
			loc := "-"
			if is.Line > 0 {
				loc = fmt.Sprintf("%d", is.Line)
			}
			sev := st.warning.Render(fmt.Sprintf("%-7s", is.Severity.Label()))
			if is.Severity == core.SeverityError {
				sev = st.error.Render(fmt.Sprintf("%-7s", is.Severity.Label()))
			}
			fmt.Fprintf(&b, "  %s  %s  %s", st.muted.Render(fmt.Sprintf("%5s", loc)), sev, is.Message)
			if is.RuleID != "" {
				fmt.Fprintf(&b, "  %s", st.muted.Render(is.RuleID))
			}
			b.WriteString("\n")
			if r.verbose {
				if is.Explanation != "" {
					fmt.Fprintf(&b, "%s%s\n", strings.Repeat(" ", 18), st.muted.Render(is.Explanation))
				}
				if is.Fix != "" {
					fmt.Fprintf(&b, "%sfix: %s\n", strings.Repeat(" ", 18), is.Fix)
				}
			}
		}
		b.WriteString("\n")
	}

	errors, warnings := r.Summary()
	switch total := errors + warnings; {
	case total == 0:
		b.WriteString(st.success.Render("No problems found"))
	case errors > 0:
		b.WriteString(st.error.Render(st.bold.Render(summaryLine(total, errors, warnings))))
	default:
		b.WriteString(st.warning.Render(st.bold.Render(summaryLine(total, errors, warnings))))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func summaryLine(total, errors, warnings int) string {
	return fmt.Sprintf("%d %s (%d %s, %d %s)",
		total, plural(total, "problem"),
		errors, plural(errors, "error"),
		warnings, plural(warnings, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func (r *Reporter) renderCompact(w io.Writer) error {
	var b strings.Builder
	for _, g := range r.byFile() {
		for _, is := range g.issues {
			b.WriteString(g.path)
			if is.Line > 0 {
				fmt.Fprintf(&b, ":%d", is.Line)
			}
			fmt.Fprintf(&b, ": %s %s", is.Severity.Label(), is.Message)
			if is.RuleID != "" {
				fmt.Fprintf(&b, " [%s]", is.RuleID)
			}
			b.WriteString("\n")
			if r.verbose && is.Fix != "" {
				fmt.Fprintf(&b, "  fix: %s\n", is.Fix)
			}
		}
	}
	errors, warnings := r.Summary()
	if errors+warnings > 0 {
		b.WriteString(summaryLine(errors+warnings, errors, warnings))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// JSONReport is the document written by the json format.
type JSONReport struct {
	Valid        bool                  `json:"valid"`
	ErrorCount   int                   `json:"errorCount"`
	WarningCount int                   `json:"warningCount"`
	Validators   []JSONValidatorReport `json:"validators"`
}

// JSONValidatorReport is one validator entry of a JSONReport.
type JSONValidatorReport struct {
	Name     string       `json:"name"`
	Valid    bool         `json:"valid"`
	Errors   []core.Issue `json:"errors"`
	Warnings []core.Issue `json:"warnings"`
}

// JSON builds the json format document.
func (r *Reporter) JSON() JSONReport {
	errors, warnings := r.Summary()
	out := JSONReport{
		Valid:        errors == 0,
		ErrorCount:   errors,
		WarningCount: warnings,
		Validators:   make([]JSONValidatorReport, 0, len(r.results)),
	}
	for _, res := range r.results {
		v := JSONValidatorReport{
			Name:     res.Validator,
			Valid:    res.Valid(),
			Errors:   res.Errors,
			Warnings: res.Warnings,
		}
		if v.Errors == nil {
			v.Errors = []core.Issue{}
		}
		if v.Warnings == nil {
			v.Warnings = []core.Issue{}
		}
		out.Validators = append(out.Validators, v)
	}
	return out
}

func (r *Reporter) renderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.JSON())
}

// renderGitHub writes workflow commands that GitHub Actions turns into
// annotations.
func (r *Reporter) renderGitHub(w io.Writer) error {
	var b strings.Builder
	for _, g := range r.byFile() {
		for _, is := range g.issues {
			level := "warning"
			if is.Severity == core.SeverityError {
				level = "error"
			}
			props := []string{"file=" + escapeProperty(g.path)}
			if is.Line > 0 {
				props = append(props, fmt.Sprintf("line=%d", is.Line))
			}
			if is.RuleID != "" {
				props = append(props, "title="+escapeProperty(is.RuleID))
			}
			msg := is.Message
			if is.Fix != "" {
				msg += "\n" + is.Fix
			}
			fmt.Fprintf(&b, "::%s %s::%s\n", level, strings.Join(props, ","), escapeData(msg))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeData(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}

func escapeProperty(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C").Replace(s)
}
