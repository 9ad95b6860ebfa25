package cosched_internal

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/huandu/go-clone"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("", []byte(`cosched_config:
  discipline: pending
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Instance != CONFIG_INSTANCE_DEFAULT {
		t.Errorf("expected default instance, got %q", cfg.Instance)
	}
	if cfg.TickMs != DEFAULT_TICK_MS {
		t.Errorf("expected default tick_ms, got %d", cfg.TickMs)
	}
	if cfg.ShutdownMaxWait != CONFIG_SHUTDOWN_MAX_WAIT_DEFAULT {
		t.Errorf("expected default shutdown_max_wait, got %s", cfg.ShutdownMaxWait)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	buf := []byte(`cosched_config:
  instance: myinst
  discipline: table
  tick_ms: 2
  max_tasks: 4
  max_slots: 64
  shutdown_max_wait: 10s
  log_config:
    level: debug
`)
	cfg, err := LoadConfig("", buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Instance != "myinst" {
		t.Errorf("instance: got %q", cfg.Instance)
	}
	if cfg.Discipline != DisciplineTable {
		t.Errorf("discipline: got %q", cfg.Discipline)
	}
	if cfg.TickMs != 2 || cfg.MaxTasks != 4 || cfg.MaxSlots != 64 {
		t.Errorf("unexpected scalar overrides: %+v", cfg)
	}
	if cfg.ShutdownMaxWait != 10*time.Second {
		t.Errorf("shutdown_max_wait: got %s", cfg.ShutdownMaxWait)
	}
	if cfg.LoggerConfig.Level != "debug" {
		t.Errorf("log_config.level: got %q", cfg.LoggerConfig.Level)
	}
}

func TestLoadConfigInvalidDiscipline(t *testing.T) {
	buf := []byte(`cosched_config:
  discipline: bogus
`)
	if _, err := LoadConfig("", buf); err == nil {
		t.Fatal("expected error for invalid discipline")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/path/cosched-config.yaml", nil); err == nil {
		t.Fatal("expected error opening a nonexistent file")
	}
}

func TestLoadConfigMatchesWant(t *testing.T) {
	buf := []byte(`cosched_config:
  instance: matchtest
  discipline: phase
  tick_ms: 5
`)
	want := DefaultConfig()
	want.Instance = "matchtest"
	want.Discipline = DisciplinePhase
	want.TickMs = 5

	// Clone before use so a buggy LoadConfig mutating its defaults in place
	// would show up as a diff against an untouched reference, not corrupt
	// the reference itself.
	wantClone := clone.Clone(want).(*Config)

	got, err := LoadConfig("", buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(wantClone, got); diff != "" {
		t.Fatalf("Config mismatch (-want +got):\n%s", diff)
	}
}
