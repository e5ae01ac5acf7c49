// internal/config/validate_test.go
package config

import "testing"

func u8(v uint8) *uint8    { return &v }
func u16(v uint16) *uint16 { return &v }
func i32(v int32) *int32    { return &v }

// helper to build a modbus sink quickly
func modbusSink(unitID uint8, addr uint16, slot *uint16, statusUnit *uint8) *ModbusSinkConfig {
	return &ModbusSinkConfig{
		Endpoint:     "127.0.0.1:502",
		UnitID:       unitID,
		Address:      addr,
		StatusSlot:   slot,
		StatusUnitID: statusUnit,
	}
}

// ---- tests ----

func TestValidate_EmptyConfigIsValid(t *testing.T) {
	if err := Validate(&Config{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsNegativeSampling(t *testing.T) {
	cfg := &Config{Device: DeviceConfig{SamplingMs: -1}}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected sampling error, got nil")
	}
}

func TestValidate_RejectsNegativeVariation(t *testing.T) {
	cfg := &Config{Device: DeviceConfig{VariationMC: i32(-5)}}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected variation error, got nil")
	}
}

func TestValidate_BufferCapacityPowerOfTwo(t *testing.T) {
	for _, c := range []int{1, 3, 48, -8} {
		cfg := &Config{Device: DeviceConfig{BufferCapacity: c}}
		if err := Validate(cfg); err == nil {
			t.Fatalf("capacity %d: expected error, got nil", c)
		}
	}
	for _, c := range []int{0, 2, 64, 1024} {
		cfg := &Config{Device: DeviceConfig{BufferCapacity: c}}
		if err := Validate(cfg); err != nil {
			t.Fatalf("capacity %d: unexpected error: %v", c, err)
		}
	}
}

func TestValidate_RejectsTemperatureOverflow(t *testing.T) {
	cfg := &Config{Device: DeviceConfig{BaselineMC: i32(2147483000), VariationMC: i32(10000)}}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected overflow error, got nil")
	}
}

func TestValidate_OverflowUsesDefaults(t *testing.T) {
	// unset variation is checked as the 10000 default
	cfg := &Config{Device: DeviceConfig{BaselineMC: i32(2147480000)}}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected overflow error, got nil")
	}

	cfg = &Config{Device: DeviceConfig{BaselineMC: i32(2147480000), VariationMC: i32(0)}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("zero variation should fit: %v", err)
	}
}

func TestValidate_RejectsNonASCIIName(t *testing.T) {
	cfg := &Config{Device: DeviceConfig{Name: "tempé"}}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected name error, got nil")
	}
}

func TestValidate_StatusBlockSameUnitNoOverlap(t *testing.T) {
	// sample block 0-7, status slot 1 = 20-39
	cfg := &Config{Sinks: SinksConfig{Modbus: modbusSink(1, 0, u16(1), nil)}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_StatusBlockOverlapDetected(t *testing.T) {
	// sample block 15-22 overlaps status slot 0 = 0-19
	cfg := &Config{Sinks: SinksConfig{Modbus: modbusSink(1, 15, u16(0), nil)}}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected overlap error, got nil")
	}
}

func TestValidate_StatusBlockOtherUnitAllowed(t *testing.T) {
	cfg := &Config{Sinks: SinksConfig{Modbus: modbusSink(1, 0, u16(0), u8(2))}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_TouchingBlocksAllowed(t *testing.T) {
	// status slot 0 = 0-19, sample block 20-27
	cfg := &Config{Sinks: SinksConfig{Modbus: modbusSink(1, 20, u16(0), nil)}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_SinkEndpointsRequired(t *testing.T) {
	cases := []*Config{
		{Sinks: SinksConfig{Modbus: &ModbusSinkConfig{}}},
		{Sinks: SinksConfig{Redis: &RedisSinkConfig{}}},
		{Sinks: SinksConfig{Ingest: &IngestSinkConfig{}}},
	}
	for i, cfg := range cases {
		if err := Validate(cfg); err == nil {
			t.Fatalf("case %d: expected error, got nil", i)
		}
	}
}
