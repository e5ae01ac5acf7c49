// internal/config/normalize.go
package config

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ------------------------------------------------------------
	// DEVICE DEFAULTS
	// ------------------------------------------------------------

	d := &cfg.Device
	if d.Name == "" {
		d.Name = DefaultName
	}
	if d.SamplingMs == 0 {
		d.SamplingMs = DefaultSamplingMs
	}
	// temperatures: nil = unset, explicit zero is kept
	if d.ThresholdMC == nil {
		v := d.Threshold()
		d.ThresholdMC = &v
	}
	if d.BaselineMC == nil {
		v := d.Baseline()
		d.BaselineMC = &v
	}
	if d.VariationMC == nil {
		v := d.Variation()
		d.VariationMC = &v
	}
	if d.BufferCapacity == 0 {
		d.BufferCapacity = DefaultBufferCapacity
	}

	// ------------------------------------------------------------
	// SINK DEFAULTS
	// ------------------------------------------------------------

	if m := cfg.Sinks.Modbus; m != nil {
		if m.TimeoutMs == 0 {
			m.TimeoutMs = DefaultTimeoutMs
		}
		// status memory defaults to the data unit
		if m.StatusSlot != nil && m.StatusUnitID == nil {
			uid := m.UnitID
			m.StatusUnitID = &uid
		}
	}
	if r := cfg.Sinks.Redis; r != nil && r.Channel == "" {
		r.Channel = DefaultRedisChannel
	}
	if i := cfg.Sinks.Ingest; i != nil && i.TimeoutMs == 0 {
		i.TimeoutMs = DefaultTimeoutMs
	}
}
