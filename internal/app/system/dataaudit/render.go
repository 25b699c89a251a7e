package dataaudit

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// WriteYAML renders r as a YAML document.
func WriteYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// WriteTable renders r as aligned text sections. Headings and problem
// counts are colored when colorize is true.
func WriteTable(w io.Writer, r *Report, colorize bool) error {
	heading := color.New(color.FgCyan, color.Bold)
	bad := color.New(color.FgRed)
	good := color.New(color.FgGreen)
	for _, c := range []*color.Color{heading, bad, good} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	fmt.Fprintf(w, "%s\n", heading.Sprintf("=== Lighthouse data audit %s ===", r.RunID))
	fmt.Fprintf(w, "generated %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintln(w, heading.Sprint("Collections"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range r.Counts {
		fmt.Fprintf(tw, "  %s\t%d\n", c.Name, c.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, heading.Sprintf("PIRs (%d)", len(r.PIRs)))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tEMAIL\tSTATUS\tCHECK-INS\tCURRENT\tLONGEST\tLAST\t30D %")
	for _, p := range r.PIRs {
		last := p.LastCheckIn
		if last == "" {
			last = "-"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t%d\t%d\t%s\t%.1f\n",
			p.Name, p.Email, p.Status, p.CheckIns, p.CurrentStreak, p.LongestStreak, last, p.Compliance30)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	if len(r.Orphans) == 0 {
		fmt.Fprintf(w, "%s\n", good.Sprint("Orphans: none"))
	} else {
		fmt.Fprintf(w, "%s\n", bad.Sprintf("Orphans (%d)", len(r.Orphans)))
		for _, o := range r.Orphans {
			fmt.Fprintf(w, "  %s user_id=%s\n", o.Collection, o.UserID)
		}
	}

	if len(r.UserIssues) == 0 {
		fmt.Fprintf(w, "%s\n", good.Sprint("User issues: none"))
	} else {
		fmt.Fprintf(w, "%s\n", bad.Sprintf("User issues (%d)", len(r.UserIssues)))
		for _, u := range r.UserIssues {
			fmt.Fprintf(w, "  %s <%s>: %s\n", u.ID, u.Email, u.Problem)
		}
	}
	return nil
}
