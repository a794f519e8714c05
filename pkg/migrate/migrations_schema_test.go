package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/streetlink-backend/pkg/migrate"
)

func TestInitialSchemaMigrationContainsTables(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_initial_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no initial schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE users",
		"CREATE TABLE wholesale_products",
		"CREATE TABLE vendor_orders",
		"CREATE TABLE vendor_order_items",
		"CREATE TABLE delivery_assignments",
		"CREATE UNIQUE INDEX idx_users_firebase_uid",
		"CREATE UNIQUE INDEX idx_users_email",
		"CREATE UNIQUE INDEX idx_vendor_orders_order_number",
		"REFERENCES vendor_orders (id) ON DELETE CASCADE",
		"REFERENCES wholesale_products (id) ON DELETE SET NULL",
		"DROP TABLE IF EXISTS delivery_assignments",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
