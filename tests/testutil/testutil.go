package testutil

import (
	"os"
	"strings"
	"testing"
)

// RequireTestEnvironment fails the test immediately unless GO_ENV is "test".
// Suite setups call this before touching the database so a stray
// DATABASE_URL pointing at the shop's production data can never be migrated
// or wiped by a test run.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("tests must run with GO_ENV=test (current: %q); refusing to continue", env)
	}
}

// MustSetTestEnvironment forces GO_ENV=test. Use it in SetupSuite when the
// suite also needs the config loader to pick up .env.test.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("failed to set GO_ENV=test: %v", err)
	}
}

// MaskDatabaseURL hides credentials when a test needs to log the connection
// string it is about to use.
func MaskDatabaseURL(url string) string {
	if url == "" {
		return "(not set)"
	}
	if at := strings.LastIndex(url, "@"); at >= 0 {
		if scheme := strings.Index(url, "://"); scheme >= 0 {
			return url[:scheme+3] + "***" + url[at:]
		}
	}
	return url
}
