// internal/config/config.go
package config

import "time"

type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Metrics MetricsConfig `yaml:"metrics"`
	Sinks   SinksConfig   `yaml:"sinks"`
}

// ---- DEVICE ----

// DeviceConfig is read once at attach and immutable for the device lifetime.
// Temperatures are milli-degrees; nil means "use the default", so an explicit
// zero is a real value. For the other fields zero means "use the default".
type DeviceConfig struct {
	Name           string `yaml:"name"`
	SamplingMs     int    `yaml:"sampling_ms"`
	ThresholdMC    *int32 `yaml:"threshold_mc"`
	BaselineMC     *int32 `yaml:"baseline_mc"`
	VariationMC    *int32 `yaml:"variation_mc"`
	BufferCapacity int    `yaml:"buffer_capacity"`
	Seed           uint64 `yaml:"seed"`
}

// Threshold returns the alarm threshold, or the default when unset.
func (d DeviceConfig) Threshold() int32 { return orDefault(d.ThresholdMC, DefaultThresholdMC) }

// Baseline returns the baseline temperature, or the default when unset.
func (d DeviceConfig) Baseline() int32 { return orDefault(d.BaselineMC, DefaultBaselineMC) }

// Variation returns the variation bound, or the default when unset.
func (d DeviceConfig) Variation() int32 { return orDefault(d.VariationMC, DefaultVariationMC) }

func orDefault(v *int32, def int32) int32 {
	if v == nil {
		return def
	}
	return *v
}

// Interval returns the sampling interval.
func (d DeviceConfig) Interval() time.Duration {
	return time.Duration(d.SamplingMs) * time.Millisecond
}

// ---- METRICS ----

type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// ---- SINKS ----

type SinksConfig struct {
	Modbus *ModbusSinkConfig `yaml:"modbus"`
	Redis  *RedisSinkConfig  `yaml:"redis"`
	Ingest *IngestSinkConfig `yaml:"ingest"`
}

type ModbusSinkConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	Address   uint16 `yaml:"address"`
	TimeoutMs int    `yaml:"timeout_ms"`

	// Device status block (optional, opt-in)
	StatusSlot   *uint16 `yaml:"status_slot"`
	StatusUnitID *uint8  `yaml:"status_unit_id"`
}

type RedisSinkConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

type IngestSinkConfig struct {
	Endpoint  string `yaml:"endpoint"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- DEFAULTS ----

const (
	DefaultName           = "simtemp0"
	DefaultSamplingMs     = 100
	DefaultThresholdMC    = 45000
	DefaultBaselineMC     = 35000
	DefaultVariationMC    = 10000
	DefaultBufferCapacity = 64
	DefaultTimeoutMs      = 1000
	DefaultRedisChannel   = "simtemp"
)
