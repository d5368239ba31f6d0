package rcon

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/tevino/abool"

	"github.com/mycoria/whitelist/config"
)

// Errors.
var (
	ErrAuthFailed         = errors.New("login failed")
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// DialFunc opens a network connection.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Options configures how a connection is made.
type Options struct {
	// TLSMode selects plain TCP or TLS.
	TLSMode config.TLSMode

	// ServerName is used to verify the server certificate.
	// Defaults to the host part of the address.
	ServerName string

	// Dial opens the underlying connection.
	// Defaults to a net.Dialer.
	Dial DialFunc
}

// Conn is an authenticated remote console connection.
type Conn struct {
	conn   net.Conn
	nextID int32
	closed abool.AtomicBool
}

// Dial connects to the remote console at address and logs in.
// The connection is closed again if anything fails.
func Dial(ctx context.Context, address, password string, opts Options) (*Conn, error) {
	dial := opts.Dial
	if dial == nil {
		dialer := &net.Dialer{
			KeepAlive: -1, // Disable keep-alive.
		}
		dial = dialer.DialContext
	}

	netConn, err := dial(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", address, err)
	}

	// Wrap in TLS if configured.
	switch opts.TLSMode {
	case config.TLSDisabled:
	case config.TLSEnabled, config.TLSInsecure:
		serverName := opts.ServerName
		if serverName == "" {
			serverName, _, _ = net.SplitHostPort(address)
		}
		tlsConn := tls.Client(netConn, &tls.Config{
			ServerName:         serverName,
			InsecureSkipVerify: opts.TLSMode == config.TLSInsecure, //nolint:gosec // Explicitly configured.
			MinVersion:         tls.VersionTLS12,
		})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = netConn.Close()
			return nil, fmt.Errorf("tls handshake with %s: %w", address, err)
		}
		netConn = tlsConn
	default:
		_ = netConn.Close()
		return nil, fmt.Errorf("unknown tls mode %d", opts.TLSMode)
	}

	c := NewConn(netConn)
	if deadline, ok := ctx.Deadline(); ok {
		_ = netConn.SetDeadline(deadline)
	}
	if err := c.login(password); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// NewConn returns a new remote console connection using the given
// network connection. The caller must log in before sending commands.
func NewConn(netConn net.Conn) *Conn {
	return &Conn{
		conn:   netConn,
		nextID: 1,
	}
}

func (c *Conn) login(password string) error {
	id := c.newID()
	if err := WritePacket(c.conn, Packet{ID: id, Type: TypeLogin, Body: password}); err != nil {
		return fmt.Errorf("send login: %w", err)
	}

	// Some servers send an empty response before the login response.
	for attempt := 0; attempt < 2; attempt++ {
		resp, err := ReadPacket(c.conn)
		switch {
		case err != nil:
			return fmt.Errorf("read login response: %w", err)
		case resp.ID == -1:
			return ErrAuthFailed
		case resp.Type == TypeResponse:
			continue
		case resp.Type == TypeLoginResponse && resp.ID == id:
			return nil
		default:
			return fmt.Errorf("%w: id %d type %d during login", ErrUnexpectedResponse, resp.ID, resp.Type)
		}
	}
	return fmt.Errorf("%w: no login response", ErrUnexpectedResponse)
}

// Command sends a command and returns the response.
// Responses spanning multiple packets are joined. To find the end of the
// response, an empty packet is sent after the command; the server answers
// it only after the full response.
func (c *Conn) Command(command string) (string, error) {
	if len(command) > MaxCommandSize {
		return "", fmt.Errorf("%w: %d bytes", ErrCommandTooLong, len(command))
	}

	id := c.newID()
	if err := WritePacket(c.conn, Packet{ID: id, Type: TypeCommand, Body: command}); err != nil {
		return "", fmt.Errorf("send command: %w", err)
	}
	endID := c.newID()
	if err := WritePacket(c.conn, Packet{ID: endID, Type: TypeResponse}); err != nil {
		return "", fmt.Errorf("send end marker: %w", err)
	}

	var response strings.Builder
	for {
		resp, err := ReadPacket(c.conn)
		switch {
		case err != nil:
			return "", fmt.Errorf("read response: %w", err)
		case resp.ID == endID:
			return response.String(), nil
		case resp.ID == id && resp.Type == TypeResponse:
			response.WriteString(resp.Body)
		default:
			return "", fmt.Errorf("%w: id %d type %d", ErrUnexpectedResponse, resp.ID, resp.Type)
		}
	}
}

// Close closes the connection. Only the first call has an effect.
func (c *Conn) Close() error {
	if !c.closed.SetToIf(false, true) {
		return nil
	}
	return c.conn.Close()
}

func (c *Conn) newID() int32 {
	id := c.nextID
	c.nextID++
	return id
}
