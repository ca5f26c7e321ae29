package defaults

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Issue is one reported unused default.
type Issue struct {
	Code      string `json:"code" yaml:"code" toon:"code"`
	Function  string `json:"function" yaml:"function" toon:"function"`
	Param     string `json:"param" yaml:"param" toon:"param"`
	Default   string `json:"default" yaml:"default" toon:"default"`
	CallSites int    `json:"call_sites" yaml:"call_sites" toon:"call_sites"`
	File      string `json:"file" yaml:"file" toon:"file"`
	Line      uint32 `json:"line" yaml:"line" toon:"line"`
	Column    uint32 `json:"column" yaml:"column" toon:"column"`
	Message   string `json:"message" yaml:"message" toon:"message"`
}

// Location formats file:line:col.
func (i Issue) Location() string {
	return fmt.Sprintf("%s:%d:%d", i.File, i.Line, i.Column)
}

// Summary holds run statistics.
type Summary struct {
	FilesScanned      int     `json:"files_scanned" yaml:"files_scanned" toon:"files_scanned"`
	FilesSkipped      int     `json:"files_skipped" yaml:"files_skipped" toon:"files_skipped"`
	CachedFiles       int     `json:"cached_files" yaml:"cached_files" toon:"cached_files"`
	Definitions       int     `json:"definitions" yaml:"definitions" toon:"definitions"`
	CalledDefinitions int     `json:"called_definitions" yaml:"called_definitions" toon:"called_definitions"`
	CallSites         int     `json:"call_sites" yaml:"call_sites" toon:"call_sites"`
	Indeterminate     int     `json:"indeterminate_params" yaml:"indeterminate_params" toon:"indeterminate_params"`
	Suppressed        int     `json:"suppressed" yaml:"suppressed" toon:"suppressed"`
	BelowThreshold    int     `json:"below_threshold" yaml:"below_threshold" toon:"below_threshold"`
	Issues            int     `json:"issues" yaml:"issues" toon:"issues"`
	MeanCallSites     float64 `json:"mean_call_sites" yaml:"mean_call_sites" toon:"mean_call_sites"`
	MaxCallSites      int     `json:"max_call_sites" yaml:"max_call_sites" toon:"max_call_sites"`
}

// SkippedFile is a file that could not be read or parsed.
type SkippedFile struct {
	Path   string `json:"path" yaml:"path" toon:"path"`
	Reason string `json:"reason" yaml:"reason" toon:"reason"`
}

// Analysis is the result of one run.
type Analysis struct {
	Issues  []Issue       `json:"issues"`
	Summary Summary       `json:"summary"`
	Skipped []SkippedFile `json:"skipped,omitempty"`
}

// HasIssues reports whether anything was reported.
func (a *Analysis) HasIssues() bool {
	return len(a.Issues) > 0
}

// buildIssues turns unused usages into ordered issues, dropping those below
// minCallSites or suppressed by noqa.
func buildIssues(agg *Aggregation, minCallSites int, summary *Summary) []Issue {
	type ranked struct {
		issue    Issue
		position int
	}

	var found []ranked
	for _, u := range agg.Unused() {
		if u.Sites < minCallSites {
			summary.BelowThreshold++
			continue
		}
		if u.Definition.Suppressed || u.Param.Suppressed {
			summary.Suppressed++
			continue
		}
		rendered := u.Param.Default.String()
		found = append(found, ranked{
			issue: Issue{
				Code:      Code,
				Function:  u.Definition.Name,
				Param:     u.Param.Name,
				Default:   rendered,
				CallSites: u.Sites,
				File:      u.Definition.File,
				Line:      u.Definition.Line,
				Column:    u.Definition.Column,
				Message:   message(u.Param.Name, rendered, u.Sites),
			},
			position: u.Position,
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i].issue, found[j].issue
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return found[i].position < found[j].position
	})

	issues := make([]Issue, len(found))
	for i, r := range found {
		issues[i] = r.issue
	}
	return issues
}

func message(param, rendered string, sites int) string {
	return fmt.Sprintf("default never used: %s = %s (%d call sites always pass it)", param, rendered, sites)
}

// callSiteStats computes mean and max matching call sites over issues.
func callSiteStats(issues []Issue) (float64, int) {
	if len(issues) == 0 {
		return 0, 0
	}
	xs := make([]float64, len(issues))
	for i, issue := range issues {
		xs[i] = float64(issue.CallSites)
	}
	return stat.Mean(xs, nil), int(floats.Max(xs))
}

// RenderData returns the issues as a bare list.
func (a *Analysis) RenderData() any {
	if a.Issues == nil {
		return []Issue{}
	}
	return a.Issues
}

// RenderText writes one line per issue followed by a count line.
func (a *Analysis) RenderText(w io.Writer, colored bool) error {
	code := fmt.Sprint
	fn := fmt.Sprint
	if colored {
		code = color.New(color.FgRed, color.Bold).Sprint
		fn = color.New(color.FgCyan).Sprint
	}

	for _, issue := range a.Issues {
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", issue.Location(), code(issue.Code), fn(issue.Function), issue.Message); err != nil {
			return err
		}
	}

	if len(a.Issues) > 0 {
		fmt.Fprintln(w)
	}
	_, err := fmt.Fprintf(w, "Found %d unused defaults\n", len(a.Issues))
	return err
}

// RenderMarkdown writes an issue table and the run summary.
func (a *Analysis) RenderMarkdown(w io.Writer) error {
	fmt.Fprintln(w, "# Unused Defaults")
	fmt.Fprintln(w)

	if len(a.Issues) == 0 {
		fmt.Fprintln(w, "No unused defaults found.")
		fmt.Fprintln(w)
	} else {
		fmt.Fprintln(w, "| Location | Function | Parameter | Default | Call Sites |")
		fmt.Fprintln(w, "| --- | --- | --- | --- | --- |")
		for _, issue := range a.Issues {
			fmt.Fprintf(w, "| `%s` | `%s` | `%s` | `%s` | %d |\n",
				issue.Location(), issue.Function, issue.Param, escapeMarkdown(issue.Default), issue.CallSites)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "## Summary")
	fmt.Fprintln(w)
	for _, row := range a.SummaryRows() {
		fmt.Fprintf(w, "- **%s**: %s\n", row[0], row[1])
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Found %d unused defaults\n", len(a.Issues))
	return nil
}

// TableRows returns one row per issue for tabular output.
func (a *Analysis) TableRows() ([]string, [][]string) {
	headers := []string{"Location", "Code", "Function", "Param", "Default", "Call Sites"}
	rows := make([][]string, len(a.Issues))
	for i, issue := range a.Issues {
		rows[i] = []string{
			issue.Location(),
			issue.Code,
			issue.Function,
			issue.Param,
			issue.Default,
			fmt.Sprint(issue.CallSites),
		}
	}
	return headers, rows
}

// TableFooter is printed after the table.
func (a *Analysis) TableFooter() string {
	return fmt.Sprintf("Found %d unused defaults", len(a.Issues))
}

// SummaryRows returns label/value pairs for display.
func (a *Analysis) SummaryRows() [][2]string {
	s := a.Summary
	return [][2]string{
		{"Files scanned", fmt.Sprint(s.FilesScanned)},
		{"Files skipped", fmt.Sprint(s.FilesSkipped)},
		{"Definitions with defaults", fmt.Sprint(s.Definitions)},
		{"Called definitions", fmt.Sprint(s.CalledDefinitions)},
		{"Call sites", fmt.Sprint(s.CallSites)},
		{"Indeterminate parameters", fmt.Sprint(s.Indeterminate)},
		{"Suppressed", fmt.Sprint(s.Suppressed)},
		{"Below threshold", fmt.Sprint(s.BelowThreshold)},
		{"Mean call sites per issue", fmt.Sprintf("%.2f", s.MeanCallSites)},
		{"Max call sites per issue", fmt.Sprint(s.MaxCallSites)},
	}
}

func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
