package postgres

import (
	"context"
	"testing"
	"time"
)

func TestStore_PostgresPingAndMigrations(t *testing.T) {
	store := openRawPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status: %v", err)
	}
	if version == 0 || count == 0 {
		t.Fatalf("expected applied migrations, got version=%d count=%d", version, count)
	}

	// Повторный прогон идемпотентен.
	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("second migrate up: %v", err)
	}
	versionAfter, countAfter, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("migration status after rerun: %v", err)
	}
	if versionAfter != version || countAfter != count {
		t.Fatalf("expected stable status, got version=%d count=%d", versionAfter, countAfter)
	}
}
