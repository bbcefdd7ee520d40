package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/panaderiapro/panaderiapro/internal/diagnostics"
)

// StoreChecker runs the store diagnostics.
type StoreChecker interface {
	Check(ctx context.Context) diagnostics.Report
}

// DoctorOptions defines the flags of the doctor command.
type DoctorOptions struct {
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// DoctorCommand checks store configuration and table access. It exits 0 when
// every table answered, 10 when the store is unconfigured or a table failed.
func DoctorCommand(ctx context.Context, checker StoreChecker, opts DoctorOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if checker == nil {
		_, _ = fmt.Fprintln(opts.Stderr, "doctor: checker not configured")
		return 1
	}
	report := checker.Check(ctx)
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(report); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "doctor: encode json: %v\n", err)
			return 1
		}
	} else {
		renderDoctorHuman(opts.Stdout, report)
	}
	if !report.OK {
		return 10
	}
	return 0
}

func renderDoctorHuman(out io.Writer, report diagnostics.Report) {
	p := message.NewPrinter(language.Spanish)
	if len(report.Missing) > 0 {
		_, _ = fmt.Fprintf(out, "Store not configured: set %s\n", strings.Join(report.Missing, ", "))
		return
	}
	for _, t := range report.Tables {
		if t.Error != "" {
			_, _ = fmt.Fprintf(out, "  FAIL %-16s %s\n", t.Name, t.Error)
			continue
		}
		_, _ = p.Fprintf(out, "  ok   %-16s %d rows\n", t.Name, t.Rows)
	}
	if report.OK {
		_, _ = fmt.Fprintln(out, "All tables reachable.")
	} else {
		_, _ = fmt.Fprintln(out, "Some tables could not be read; check the schema and credentials.")
	}
}
