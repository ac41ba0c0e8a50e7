package config

import (
	"fmt"
	"os"
	"testing"
)

// TestMain runs before all tests in the config package.
// Config tests load env files and touch the database connection, so they must
// never run against a development or production environment.
func TestMain(m *testing.M) {
	env := os.Getenv("GO_ENV")
	if env != "test" {
		fmt.Fprintf(os.Stderr, "\n"+
			"SAFETY CHECK FAILED: tests must run with GO_ENV=test to prevent data loss.\n"+
			"Current GO_ENV: %q\n\n"+
			"Run them as:\n"+
			"  GO_ENV=test go test ./...\n\n",
			env)
		os.Exit(1)
	}

	os.Exit(m.Run())
}
