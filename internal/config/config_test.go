package config_test

import (
	"testing"
	"time"

	"github.com/Harsh-BH/recordflow/internal/config"
	"github.com/Harsh-BH/recordflow/internal/pool"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pc := cfg.PoolConfig()
	if pc.CoreSize != 10 || pc.MaxSize != 20 || pc.QueueCapacity != 500 {
		t.Errorf("unexpected pool sizes: %+v", pc)
	}
	if pc.NamePrefix != "batch-" {
		t.Errorf("expected prefix batch-, got %q", pc.NamePrefix)
	}
	if pc.Policy != pool.PolicyBlock {
		t.Errorf("expected block policy, got %q", pc.Policy)
	}
	if cfg.Batch.ProcessingDelay != 100*time.Millisecond {
		t.Errorf("expected 100ms delay, got %s", cfg.Batch.ProcessingDelay)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BATCH_CORE_WORKERS", "3")
	t.Setenv("BATCH_MAX_WORKERS", "6")
	t.Setenv("BATCH_QUEUE_CAPACITY", "12")
	t.Setenv("BATCH_QUEUE_POLICY", "reject")
	t.Setenv("BATCH_PROCESSING_DELAY", "5ms")
	t.Setenv("API_PORT", "9000")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pc := cfg.PoolConfig()
	if pc.CoreSize != 3 || pc.MaxSize != 6 || pc.QueueCapacity != 12 {
		t.Errorf("unexpected pool sizes: %+v", pc)
	}
	if pc.Policy != pool.PolicyReject {
		t.Errorf("expected reject policy, got %q", pc.Policy)
	}
	if cfg.Batch.ProcessingDelay != 5*time.Millisecond {
		t.Errorf("expected 5ms delay, got %s", cfg.Batch.ProcessingDelay)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
}

func TestLoad_InvalidPoolSettings(t *testing.T) {
	t.Setenv("BATCH_CORE_WORKERS", "8")
	t.Setenv("BATCH_MAX_WORKERS", "4")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error when max workers < core workers")
	}
}

func TestLoad_UnknownPolicy(t *testing.T) {
	t.Setenv("BATCH_QUEUE_POLICY", "drop")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for unknown queue policy")
	}
}
