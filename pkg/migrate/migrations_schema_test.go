package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestVehiclesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_vehicles_table.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS vehicles",
		"CHECK (stock_quantity >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_vehicles_vin",
		"CREATE INDEX IF NOT EXISTS idx_vehicles_is_active_stock",
		"DROP TABLE IF EXISTS vehicles",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrdersMigrationContainsHistoryCascade(t *testing.T) {
	content := readMigration(t, "*_create_orders_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"status text NOT NULL DEFAULT 'processing'",
		"payment_status text NOT NULL DEFAULT 'unpaid'",
		"CREATE TABLE IF NOT EXISTS order_histories",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS order_histories",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestAppointmentsMigrationIndexesActiveSlots(t *testing.T) {
	content := readMigration(t, "*_create_test_drive_appointments.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS test_drive_appointments",
		"status text NOT NULL DEFAULT 'pending'",
		"WHERE status IN ('pending', 'confirmed')",
		"DROP TABLE IF EXISTS test_drive_appointments",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
