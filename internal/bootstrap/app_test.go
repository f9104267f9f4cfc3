package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"candidatevet/internal/bootstrap/config"
	"candidatevet/internal/bootstrap/database"
)

func TestInitSchemaIsRepeatable(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "schema.sqlite"),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	app := &App{DB: db}

	for i := 0; i < 2; i++ {
		tables, err := app.InitSchema(ctx)
		if err != nil {
			t.Fatalf("InitSchema() run %d error = %v", i+1, err)
		}
		if len(tables) == 0 || tables[len(tables)-1] != "kv_cache" {
			t.Fatalf("tables = %v", tables)
		}
		for _, table := range tables {
			if !db.Migrator().HasTable(table) {
				t.Fatalf("table %s missing after migration", table)
			}
		}
	}
}
