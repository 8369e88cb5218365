package database

import (
	"context"
	"testing"

	"github.com/kbukum/authd/component"
	"github.com/kbukum/authd/logger"
)

func memoryConfig() Config {
	return Config{
		DSN:             "file::memory:?_foreign_keys=on",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: "0",
		MaxRetries:      1,
		Migrate:         true,
		LogLevel:        "silent",
	}
}

func TestComponent_Name(t *testing.T) {
	comp := NewComponent(memoryConfig(), logger.NewNop())
	if got := comp.Name(); got != "database" {
		t.Errorf("Name() = %q, want %q", got, "database")
	}
}

func TestComponent_HealthBeforeStart(t *testing.T) {
	comp := NewComponent(memoryConfig(), logger.NewNop())
	h := comp.Health(context.Background())
	if h.Status != component.StatusUnhealthy {
		t.Errorf("Status = %q, want %q", h.Status, component.StatusUnhealthy)
	}
	if comp.DB() != nil {
		t.Error("DB() should be nil before Start")
	}
	if err := comp.Stop(context.Background()); err != nil {
		t.Errorf("Stop before Start should be a no-op, got %v", err)
	}
}

func TestComponent_StartMigratesAndStops(t *testing.T) {
	ctx := context.Background()
	comp := NewComponent(memoryConfig(), logger.NewNop())
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("Status = %q (%s), want healthy", h.Status, h.Message)
	}
	for _, table := range []string{"client_infos", "callback_urls", "user_infos", "user_credentials", "registrations", "access_codes", "tokens"} {
		if !comp.DB().GormDB.Migrator().HasTable(table) {
			t.Errorf("expected table %s after migration", table)
		}
	}

	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := comp.Stop(ctx); err != nil {
		t.Errorf("second Stop should be a no-op, got %v", err)
	}
}

func TestComponent_StartFailsOnInvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.LogLevel = "loud"
	comp := NewComponent(cfg, logger.NewNop())
	if err := comp.Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail")
	}
}
