// internal/sink/ingest/client.go
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/tamzrod/simtemp/internal/sample"
)

const (
	magicHi byte = 0x53 // 'S'
	magicLo byte = 0x54 // 'T'

	versionV1 byte = 0x01

	respOK       byte = 0x00
	respRejected byte = 0x01

	HeaderSize = 8
)

// Sample ingest v1 client (stateless, 1 packet = 1 connection)
type Client struct {
	endpoint string
	timeout  time.Duration
	dialer   net.Dialer
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("sink ingest: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		dialer:   net.Dialer{Timeout: cfg.Timeout},
	}, nil
}

func (c *Client) Name() string { return "ingest" }

func (c *Client) Close() error { return nil }

// Deliver sends one sample as a single-record packet.
func (c *Client) Deliver(ctx context.Context, s sample.Sample) error {
	return c.send(ctx, BuildPacket([]sample.Sample{s}))
}

// DeliverBatch sends all samples in one packet.
func (c *Client) DeliverBatch(ctx context.Context, batch []sample.Sample) error {
	if len(batch) == 0 {
		return nil
	}
	if len(batch) > 0xFFFF {
		return fmt.Errorf("sink ingest: batch of %d exceeds 65535 records", len(batch))
	}
	return c.send(ctx, BuildPacket(batch))
}

func (c *Client) send(ctx context.Context, pkt []byte) error {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.endpoint)
	if err != nil {
		return fmt.Errorf("sink ingest: dial: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	if err := writeAll(conn, pkt); err != nil {
		return fmt.Errorf("sink ingest: write: %w", err)
	}

	var resp [1]byte
	if _, err := io.ReadFull(conn, resp[:]); err != nil {
		return fmt.Errorf("sink ingest: read status: %w", err)
	}

	switch resp[0] {
	case respOK:
		return nil
	case respRejected:
		return errors.New("sink ingest: rejected")
	default:
		return fmt.Errorf("sink ingest: unknown status 0x%02x", resp[0])
	}
}

//
// ---- Sample ingest v1 packet builder (LOCKED) ----
//
// Layout (8 bytes header):
// 0–1  Magic "ST"
// 2    Version (0x01)
// 3    Reserved (0x00)
// 4–5  Record count (big-endian)
// 6–7  Record size (big-endian, 16)
// 8+   Records, each in the 16-byte device record format
//

func BuildPacket(batch []sample.Sample) []byte {
	pkt := make([]byte, HeaderSize, HeaderSize+len(batch)*sample.RecordSize)

	pkt[0] = magicHi
	pkt[1] = magicLo
	pkt[2] = versionV1

	putU16(pkt[4:6], uint16(len(batch)))
	putU16(pkt[6:8], sample.RecordSize)

	for _, s := range batch {
		pkt = sample.AppendRecord(pkt, s)
	}
	return pkt
}

//
// ---- helpers ----
//

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func putU16(dst []byte, v uint16) {
	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}
