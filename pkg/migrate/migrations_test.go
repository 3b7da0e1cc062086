package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roadcasehq/merchtable-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestMerchandiseMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_merchandise.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS merchandise",
		"CHECK (price_cents >= 0)",
		"CHECK (stock >= 0)",
		"low_stock_threshold INTEGER NOT NULL DEFAULT 5",
		"DROP TABLE IF EXISTS merchandise",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSalesMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_sales_and_stock_log.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS sales",
		"CHECK (quantity > 0)",
		"CREATE TABLE IF NOT EXISTS stock_log",
		"CREATE TABLE IF NOT EXISTS stock_alerts",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_stock_alerts_active",
		"DROP TABLE IF EXISTS sales",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
