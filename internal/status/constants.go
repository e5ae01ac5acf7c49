// internal/status/constants.go
package status

// Device Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per device.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the device health state.
const SlotHealthCode = 0

// SlotLastFlags holds the flags of the last delivered sample.
const SlotLastFlags = 1

// SlotSecondsStale holds how long (in seconds) no sample has arrived.
const SlotSecondsStale = 2

// SlotLastTempHi and SlotLastTempLo hold the last temperature (int32, high word first).
const SlotLastTempHi = 3
const SlotLastTempLo = 4

// ---- RESERVED RANGE ----

// Slots 5-10 are reserved for future use.
const SlotReservedStart = 5
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// SecondsStaleMax is where seconds_stale saturates.
const SecondsStaleMax = 65535

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a device delivering samples.
const HealthOK uint16 = 1

// HealthError represents a device error state.
const HealthError uint16 = 2

// HealthStale represents a device that stopped delivering samples.
const HealthStale uint16 = 3

// HealthDisabled represents a detached device.
const HealthDisabled uint16 = 4

// ---- SAMPLE BLOCK ----

// SampleRegisters is the size of the sample block written per delivery:
// timestamp (4 regs), temperature (2 regs), flags (2 regs), high word first.
const SampleRegisters = 8
