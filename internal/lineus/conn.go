// Package lineus is a thin binding to a Line-us drawing arm. It only passes
// G-code through; planning what to draw is left to the caller.
package lineus

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

// DefaultAddr is where the arm announces itself on the local network.
const DefaultAddr = "line-us.local:1337"

// Conn is an open link to the arm. Commands are sent one at a time and each
// waits for the arm's reply.
type Conn struct {
	mu       sync.Mutex
	rwc      io.ReadWriteCloser
	r        *bufio.Reader
	timeout  time.Duration
	greeting string
	logger   *slog.Logger
}

// readDeadliner is implemented by net.Conn.
type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// Dial connects over TCP. An empty addr uses DefaultAddr. A positive
// timeout bounds the dial, the greeting and every reply.
func Dial(ctx context.Context, addr string, timeout time.Duration, logger *slog.Logger) (*Conn, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	d := net.Dialer{Timeout: timeout}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("lineus: connect %s: %w", addr, err)
	}
	conn, err := NewConn(c, timeout, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return conn, nil
}

// NewConn wraps an already open link and reads the arm's greeting. When
// timeout is positive and rwc supports read deadlines, each read fails with
// os.ErrDeadlineExceeded after that long.
func NewConn(rwc io.ReadWriteCloser, timeout time.Duration, logger *slog.Logger) (*Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Conn{
		rwc:     rwc,
		r:       bufio.NewReader(rwc),
		timeout: timeout,
		logger:  logger,
	}
	hello, err := c.readMessage()
	if err != nil {
		return nil, fmt.Errorf("lineus: read greeting: %w", err)
	}
	c.greeting = hello
	logger.Info("lineus: connected", "greeting", hello)
	return c, nil
}

// Greeting returns the banner the arm sent when the link opened.
func (c *Conn) Greeting() string { return c.greeting }

// Send writes cmd and waits for the arm to acknowledge it.
func (c *Conn) Send(cmd Command) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.rwc.Write(cmd.Encode()); err != nil {
		return "", fmt.Errorf("lineus: write %s: %w", cmd, err)
	}
	resp, err := c.readMessage()
	if err != nil {
		return "", fmt.Errorf("lineus: read reply to %s: %w", cmd, err)
	}
	if !strings.HasPrefix(resp, "ok") {
		return resp, &ResponseError{Command: cmd, Response: resp}
	}
	c.logger.Debug("lineus: sent", "cmd", cmd.String(), "resp", resp)
	return resp, nil
}

// MoveLinear moves the pen to (x, y) at height z.
func (c *Conn) MoveLinear(x, y, z float64) error {
	_, err := c.Send(Move(x, y, z))
	return err
}

// SendGCode passes a raw command through, e.g. SendGCode("G94", "P50").
func (c *Conn) SendGCode(code, args string) error {
	_, err := c.Send(Command{Code: code, Args: args})
	return err
}

// Close closes the underlying link.
func (c *Conn) Close() error {
	c.logger.Info("lineus: closing connection")
	return c.rwc.Close()
}

func (c *Conn) readMessage() (string, error) {
	if d, ok := c.rwc.(readDeadliner); ok && c.timeout > 0 {
		if err := d.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return "", err
		}
	}
	b, err := c.r.ReadBytes(Terminator)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b[:len(b)-1])), nil
}
