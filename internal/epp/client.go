package epp

import (
	"context"
	"crypto/tls"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Client sends typed commands to the registry. cleaned signals the command has
// passed local validation and the transport must not re-validate it.
//
//go:generate mockgen -source=client.go -destination=../domain/mocks/epp_mocks.go -package=mocks Client
type Client interface {
	Send(ctx context.Context, cmd Command, cleaned bool) (*Response, error)
	Close() error
}

// Config describes the registry connection.
type Config struct {
	Addr        string // host:port, conventionally port 700
	ClientID    string
	Password    string
	TLS         *tls.Config
	DialTimeout time.Duration
}

// Conn is a synchronous EPP connection: RFC 5734 framing over TLS, one
// command in flight at a time. Each call blocks its caller for the round
// trip; there is no retry and no cancellation of an issued command, so a
// registry failure is terminal for that call.
type Conn struct {
	cfg    Config
	logger *slog.Logger

	mu   sync.Mutex
	sock io.ReadWriteCloser
}

// Dial connects, consumes the greeting, and logs in.
func Dial(ctx context.Context, cfg Config, logger *slog.Logger) (*Conn, error) {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	dialer := &tls.Dialer{Config: cfg.TLS}
	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	sock, err := dialer.DialContext(dialCtx, "tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial registry %s: %w", cfg.Addr, err)
	}
	c := &Conn{cfg: cfg, logger: logger, sock: sock}
	if _, err := c.readFrame(); err != nil {
		_ = sock.Close()
		return nil, fmt.Errorf("read greeting: %w", err)
	}
	if err := c.login(); err != nil {
		_ = sock.Close()
		return nil, err
	}
	return c, nil
}

func (c *Conn) login() error {
	payload, err := xml.Marshal(xmlEPP{NS: nsEPP, Command: &xmlCommand{
		Login: &xmlLogin{
			ClID:    c.cfg.ClientID,
			Pw:      c.cfg.Password,
			Version: "1.0",
			Lang:    "en",
			ObjURIs: []string{nsDomain, nsContact, nsHost},
			ExtURIs: []string{nsSecDNS},
		},
		ClTRID: newClTRID(),
	}})
	if err != nil {
		return fmt.Errorf("marshal login: %w", err)
	}
	raw, err := c.roundTrip(payload)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	var envelope xmlResponseEnvelope
	if err := xml.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("parse login response: %w", err)
	}
	if envelope.Response == nil {
		return fmt.Errorf("login response missing result")
	}
	if code := ErrorCode(envelope.Response.Result.Code); !code.IsSuccess() {
		return &RegistryError{Code: code, Note: envelope.Response.Result.Msg}
	}
	return nil
}

// Send marshals cmd, performs one framed round trip, and parses the result.
// Registry-side rejections come back as *RegistryError.
func (c *Conn) Send(ctx context.Context, cmd Command, cleaned bool) (*Response, error) {
	if !cleaned {
		return nil, fmt.Errorf("refusing to send unvalidated %s command", Name(cmd))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := marshalCommand(cmd, newClTRID())
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", Name(cmd), err)
	}
	raw, err := c.roundTrip(payload)
	if err != nil {
		return nil, fmt.Errorf("send %s: %w", Name(cmd), err)
	}
	return parseResponse(cmd, raw)
}

// Close logs out and tears down the socket.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sock == nil {
		return nil
	}
	payload, err := xml.Marshal(xmlEPP{NS: nsEPP, Command: &xmlCommand{
		Logout: &struct{}{},
		ClTRID: newClTRID(),
	}})
	if err == nil {
		if err := c.writeFrame(payload); err == nil {
			_, _ = c.readFrame()
		}
	}
	err = c.sock.Close()
	c.sock = nil
	return err
}

func (c *Conn) roundTrip(payload []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sock == nil {
		return nil, fmt.Errorf("connection closed")
	}
	if err := c.writeFrame(payload); err != nil {
		return nil, err
	}
	return c.readFrame()
}

// writeFrame prepends the RFC 5734 total-length header (4 bytes, big endian,
// length includes the header itself).
func (c *Conn) writeFrame(payload []byte) error {
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(payload)+4))
	if _, err := c.sock.Write(header); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := c.sock.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

const maxFrameSize = 16 << 20

func (c *Conn) readFrame() ([]byte, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(c.sock, header); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	total := binary.BigEndian.Uint32(header)
	if total < 4 || total > maxFrameSize {
		return nil, fmt.Errorf("invalid frame length %d", total)
	}
	payload := make([]byte, total-4)
	if _, err := io.ReadFull(c.sock, payload); err != nil {
		return nil, fmt.Errorf("read frame payload: %w", err)
	}
	return payload, nil
}

// newClTRID produces a unique client transaction id for correlation in
// registry logs.
func newClTRID() string {
	return "registrar-" + uuid.NewString()
}
