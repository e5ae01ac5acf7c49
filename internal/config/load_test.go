// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParse_EmptyYieldsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := cfg.Device
	if d.Name != DefaultName || d.Interval() != 100*time.Millisecond {
		t.Fatalf("unexpected device defaults: %+v", d)
	}
	if *d.ThresholdMC != 45000 || *d.BaselineMC != 35000 || *d.VariationMC != 10000 {
		t.Fatalf("unexpected temperature defaults: %+v", d)
	}
	if d.BufferCapacity != 64 {
		t.Fatalf("unexpected capacity default: %d", d.BufferCapacity)
	}
}

func TestParse_FullDocument(t *testing.T) {
	doc := []byte(`
device:
  name: lab1
  sampling_ms: 250
  threshold_mc: 30000
  buffer_capacity: 16
  seed: 7
metrics:
  listen: ":9108"
sinks:
  modbus:
    endpoint: "10.0.0.5:502"
    unit_id: 3
    address: 100
    status_slot: 0
  redis:
    addr: "localhost:6379"
`)
	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Device.Name != "lab1" || cfg.Device.SamplingMs != 250 || cfg.Device.Seed != 7 {
		t.Fatalf("device not decoded: %+v", cfg.Device)
	}
	if cfg.Device.Baseline() != DefaultBaselineMC || cfg.Device.Threshold() != 30000 {
		t.Fatalf("temperatures not resolved: baseline=%d threshold=%d",
			cfg.Device.Baseline(), cfg.Device.Threshold())
	}

	m := cfg.Sinks.Modbus
	if m == nil || m.TimeoutMs != DefaultTimeoutMs {
		t.Fatalf("modbus timeout default not applied: %+v", m)
	}
	if m.StatusUnitID == nil || *m.StatusUnitID != 3 {
		t.Fatalf("status unit should default to data unit")
	}
	if cfg.Sinks.Redis.Channel != DefaultRedisChannel {
		t.Fatalf("redis channel default not applied: %q", cfg.Sinks.Redis.Channel)
	}
	if cfg.Sinks.Ingest != nil {
		t.Fatalf("ingest sink should stay disabled")
	}
}

func TestParse_ExplicitZeroTemperaturesKept(t *testing.T) {
	cfg, err := Parse([]byte("device:\n  variation_mc: 0\n  baseline_mc: 0\n  threshold_mc: 0\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := cfg.Device
	if d.Variation() != 0 || d.Baseline() != 0 || d.Threshold() != 0 {
		t.Fatalf("explicit zero replaced by default: %d %d %d", d.Baseline(), d.Variation(), d.Threshold())
	}
}

func TestParse_RejectsWideVariation(t *testing.T) {
	// 0 +/- 1.5e9 fits; 35000 (default baseline) + 2147483000 does not
	if _, err := Parse([]byte("device:\n  variation_mc: 1500000000\n  baseline_mc: 0\n")); err != nil {
		t.Fatalf("in-range variation rejected: %v", err)
	}
	if _, err := Parse([]byte("device:\n  variation_mc: 2147483000\n")); err == nil {
		t.Fatalf("expected overflow with default baseline, got nil")
	}
}

func TestParse_RejectsBaselineOverflowWithDefaultVariation(t *testing.T) {
	if _, err := Parse([]byte("device:\n  baseline_mc: 2147480000\n")); err == nil {
		t.Fatalf("expected overflow error with default variation, got nil")
	}
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	if _, err := Parse([]byte("device:\n  sampling: 10\n")); err == nil {
		t.Fatalf("expected unknown field error, got nil")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simtemp.yaml")
	if err := os.WriteFile(path, []byte("device:\n  sampling_ms: 20\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Device.Interval() != 20*time.Millisecond {
		t.Fatalf("interval: got=%v", cfg.Device.Interval())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
