package testutil

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/hollyabrams/express-jobly/internal/database/postgres"
)

// IsolatedPostgres is a PostgreSQL client bound to a schema owned by one test.
type IsolatedPostgres struct {
	Client *postgres.Client
	Schema string
}

// NewIsolatedPostgres connects to the test database with a fresh schema on the
// search_path. The schema is dropped when the test finishes. The test is
// skipped unless RUN_DB_TESTS=1.
func NewIsolatedPostgres(t *testing.T) *IsolatedPostgres {
	t.Helper()

	if os.Getenv("RUN_DB_TESTS") != "1" {
		t.Skip("set RUN_DB_TESTS=1 to run database tests")
	}

	uniqueSuffix := strings.ReplaceAll(uuid.Must(uuid.NewV4()).String(), "-", "")[:16]
	schema := fmt.Sprintf("test_%s_%s", SanitizeTestName(t.Name()), uniqueSuffix)

	cfg := PostgresConfigFromEnv()
	cfg.Schema = schema

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := postgres.NewClient(ctx, cfg, cfg.Database)
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}

	t.Cleanup(func() {
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer dropCancel()
		if _, err := client.DB().ExecContext(dropCtx, fmt.Sprintf(`DROP SCHEMA IF EXISTS %s CASCADE`, schema)); err != nil {
			t.Logf("failed to drop test schema %s: %v", schema, err)
		}
		client.Close()
	})

	return &IsolatedPostgres{Client: client, Schema: schema}
}

var nonIdentifier = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// SanitizeTestName turns a test name into a usable schema identifier
func SanitizeTestName(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ToLower(nonIdentifier.ReplaceAllString(name, ""))

	// 63 byte identifier limit, minus "test_" and "_" plus a 16 char suffix
	const maxTestNameLength = 41
	if len(name) > maxTestNameLength {
		name = name[:maxTestNameLength]
	}

	return name
}
