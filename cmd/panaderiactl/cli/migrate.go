package cli

import (
	"context"
	"fmt"
	"io"
	"os"
)

// MigrationRunner applies pending schema files.
type MigrationRunner interface {
	Run(ctx context.Context) ([]string, error)
}

// MigrateCommand applies pending migrations and lists what ran.
func MigrateCommand(ctx context.Context, runner MigrationRunner, stdout, stderr io.Writer) int {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if runner == nil {
		_, _ = fmt.Fprintln(stderr, "migrate: store not configured")
		return 1
	}
	applied, err := runner.Run(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "migrate: %v\n", err)
		return 1
	}
	if len(applied) == 0 {
		_, _ = fmt.Fprintln(stdout, "Schema up to date.")
		return 0
	}
	for _, name := range applied {
		_, _ = fmt.Fprintf(stdout, "applied %s\n", name)
	}
	return 0
}
