package logger

import "testing"

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected default level info, got %s", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected default format console, got %s", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled by default")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Level: "info", Format: "json"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config should pass: %v", err)
	}

	cfg = Config{Level: "verbose", Format: "json"}
	if err := cfg.Validate(); err == nil {
		t.Error("invalid level should fail validation")
	}

	cfg = Config{Level: "info", Format: "xml"}
	if err := cfg.Validate(); err == nil {
		t.Error("invalid format should fail validation")
	}
}

func TestWithComponent(t *testing.T) {
	log := Nop().WithComponent("ratelimit")
	if log == nil {
		t.Fatal("expected non-nil logger")
	}
	// Must not panic.
	log.Info("test message", Fields("key", "value"))
	log.WithError(nil)
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two")
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields map: %v", m)
	}

	// Odd trailing value is dropped.
	m = Fields("a", 1, "dangling")
	if len(m) != 1 {
		t.Errorf("expected 1 field, got %d", len(m))
	}
}

func TestGetGlobalLogger(t *testing.T) {
	SetGlobalLogger(nil)
	if GetGlobalLogger() == nil {
		t.Error("expected lazily-created global logger")
	}
}
