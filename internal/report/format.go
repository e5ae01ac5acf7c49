// internal/report/format.go
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"

	"github.com/tamzrod/simtemp/internal/sample"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

const (
	ansiRed   = "\033[1;31m"
	ansiReset = "\033[0m"
)

// Formatter renders consumed samples one at a time.
type Formatter interface {
	Write(index uint64, s sample.Sample) error
	Flush() error
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewFormatter returns the formatter for kind.
// color only affects the table format.
func NewFormatter(kind string, w io.Writer, color bool) (Formatter, error) {
	switch kind {
	case FormatTable, "":
		return &tableFormatter{w: w, color: color}, nil
	case FormatJSON:
		return &jsonFormatter{enc: json.NewEncoder(w)}, nil
	case FormatCSV:
		return &csvFormatter{w: csv.NewWriter(w)}, nil
	default:
		return nil, fmt.Errorf("report: unknown format %q (want table, json or csv)", kind)
	}
}

// ---- table ----

type tableFormatter struct {
	w      io.Writer
	color  bool
	header bool
}

func (f *tableFormatter) Write(index uint64, s sample.Sample) error {
	if !f.header {
		if _, err := fmt.Fprintf(f.w, "%6s  %-14s  %-16s  %s\n", "INDEX", "TEMPERATURE", "FLAGS", "TIMESTAMP"); err != nil {
			return err
		}
		f.header = true
	}

	temp := fmt.Sprintf("%-14s", Celsius(s.Temperature))
	if f.color && s.Exceeded() {
		temp = ansiRed + temp + ansiReset
	}

	_, err := fmt.Fprintf(f.w, "%6d  %s  %-16s  %d ns\n", index, temp, s.Flags, s.Timestamp)
	return err
}

func (f *tableFormatter) Flush() error { return nil }

// ---- json (one object per line) ----

type jsonFlags struct {
	NewSample         bool `json:"new_sample"`
	ThresholdExceeded bool `json:"threshold_exceeded"`
}

type jsonRecord struct {
	Index         uint64    `json:"index"`
	TemperatureC  float64   `json:"temperature_C"`
	TemperatureMC int32     `json:"temperature_mC"`
	TimestampNs   uint64    `json:"timestamp_ns"`
	Flags         jsonFlags `json:"flags"`
}

type jsonFormatter struct {
	enc *json.Encoder
}

func (f *jsonFormatter) Write(index uint64, s sample.Sample) error {
	return f.enc.Encode(jsonRecord{
		Index:         index,
		TemperatureC:  float64(s.Temperature) / 1000,
		TemperatureMC: s.Temperature,
		TimestampNs:   s.Timestamp,
		Flags: jsonFlags{
			NewSample:         s.Flags.Has(sample.FlagNew),
			ThresholdExceeded: s.Exceeded(),
		},
	})
}

func (f *jsonFormatter) Flush() error { return nil }

// ---- csv ----

var csvHeader = []string{"Index", "Temperature_C", "Temperature_mC", "Timestamp_ns", "New_Sample", "Threshold_Exceeded"}

type csvFormatter struct {
	w      *csv.Writer
	header bool
}

func (f *csvFormatter) Write(index uint64, s sample.Sample) error {
	if !f.header {
		if err := f.w.Write(csvHeader); err != nil {
			return err
		}
		f.header = true
	}
	return f.w.Write([]string{
		strconv.FormatUint(index, 10),
		strconv.FormatFloat(float64(s.Temperature)/1000, 'f', 3, 64),
		strconv.FormatInt(int64(s.Temperature), 10),
		strconv.FormatUint(s.Timestamp, 10),
		boolDigit(s.Flags.Has(sample.FlagNew)),
		boolDigit(s.Exceeded()),
	})
}

// Flush pushes buffered rows to the underlying writer.
func (f *csvFormatter) Flush() error {
	f.w.Flush()
	return f.w.Error()
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
