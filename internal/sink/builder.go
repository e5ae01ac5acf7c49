// internal/sink/builder.go
package sink

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/tamzrod/simtemp/internal/config"
	"github.com/tamzrod/simtemp/internal/sink/ingest"
	"github.com/tamzrod/simtemp/internal/sink/modbus"
	"github.com/tamzrod/simtemp/internal/sink/redis"
)

// Set is the built sink stack for one device.
type Set struct {
	Deliverers []Deliverer
	Status     StatusWriter // nil when no status block is configured

	closers []io.Closer
}

// Close releases every sink connection.
func (s *Set) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build connects every configured sink.
// On failure, anything already connected is closed.
func Build(ctx context.Context, cfg config.SinksConfig, deviceName string) (*Set, error) {
	set := &Set{}

	fail := func(err error) (*Set, error) {
		_ = set.Close()
		return nil, err
	}

	if m := cfg.Modbus; m != nil {
		cli, err := modbus.NewEndpointClient(modbus.Config{
			Endpoint: m.Endpoint,
			Timeout:  time.Duration(m.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			return fail(err)
		}
		set.closers = append(set.closers, cli)
		set.Deliverers = append(set.Deliverers, NewRegisterWriter(cli, m.UnitID, m.Address))

		if m.StatusSlot != nil {
			unitID := m.UnitID
			if m.StatusUnitID != nil {
				unitID = *m.StatusUnitID
			}
			set.Status = NewDeviceStatusWriter(StatusPlan{
				UnitID:     unitID,
				BaseSlot:   *m.StatusSlot,
				DeviceName: deviceName,
			}, cli)
		}
	}

	if r := cfg.Redis; r != nil {
		pub, err := redis.New(ctx, redis.Config{
			Addr:     r.Addr,
			Password: r.Password,
			DB:       r.DB,
			Channel:  r.Channel,
			Device:   deviceName,
		})
		if err != nil {
			return fail(err)
		}
		set.closers = append(set.closers, pub)
		set.Deliverers = append(set.Deliverers, pub)
	}

	if in := cfg.Ingest; in != nil {
		cli, err := ingest.NewClient(ingest.Config{
			Endpoint: in.Endpoint,
			Timeout:  time.Duration(in.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			return fail(err)
		}
		set.closers = append(set.closers, cli)
		set.Deliverers = append(set.Deliverers, cli)
	}

	return set, nil
}
