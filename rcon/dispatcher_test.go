package rcon_test

import (
	"context"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycoria/whitelist/config"
	"github.com/mycoria/whitelist/rcon"
	"github.com/mycoria/whitelist/rcon/rcontest"
)

// countingConn counts how often it was closed.
type countingConn struct {
	net.Conn
	closes *atomic.Int32
}

func (c *countingConn) Close() error {
	c.closes.Add(1)
	return c.Conn.Close()
}

func newCountingDispatcher(closes *atomic.Int32) *rcon.Dispatcher {
	d := rcon.NewDispatcher(5 * time.Second)
	dialer := &net.Dialer{}
	d.Dial = func(ctx context.Context, network, address string) (net.Conn, error) {
		conn, err := dialer.DialContext(ctx, network, address)
		if err != nil {
			return nil, err
		}
		return &countingConn{Conn: conn, closes: closes}, nil
	}
	return d
}

func startServer(t *testing.T, handler rcontest.Handler) *rcontest.Server {
	t.Helper()

	srv, err := rcontest.NewServer("secret", handler)
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv
}

func destinationOf(srv *rcontest.Server, password string) config.Destination {
	return config.Destination{
		Name:     "test",
		Host:     srv.Host(),
		Port:     srv.Port(),
		Password: password,
	}
}

func TestSend(t *testing.T) {
	t.Parallel()

	srv := startServer(t, func(command string) string {
		return "There are 0 whitelisted players:"
	})

	var closes atomic.Int32
	d := newCountingDispatcher(&closes)
	r := d.Send(context.Background(), destinationOf(srv, "secret"), rcon.WhitelistCommand(rcon.ActionList))

	assert.True(t, r.OK())
	assert.Equal(t, "test", r.Destination)
	assert.Equal(t, "There are 0 whitelisted players:", r.Output)
	assert.Equal(t, []string{"/whitelist list"}, srv.Commands())
	assert.Equal(t, int32(1), closes.Load())
}

func TestSendRefused(t *testing.T) {
	t.Parallel()

	// Find a free port and close the listener again.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port //nolint:forcetypeassert
	require.NoError(t, ln.Close())

	var closes atomic.Int32
	d := newCountingDispatcher(&closes)
	r := d.Send(context.Background(), config.Destination{
		Name: "down",
		Host: "127.0.0.1",
		Port: port,
	}, "/whitelist on")

	assert.Equal(t, rcon.FailureRefused, r.Failure)
	assert.Equal(t, rcon.RefusedMessage, r.Output)
	assert.Equal(t, int32(0), closes.Load(), "nothing was opened")
}

func TestSendReset(t *testing.T) {
	t.Parallel()

	for _, behavior := range []rcontest.Behavior{rcontest.Reset, rcontest.Hangup} {
		srv := startServer(t, nil)
		srv.SetBehavior(behavior)

		var closes atomic.Int32
		d := newCountingDispatcher(&closes)
		r := d.Send(context.Background(), destinationOf(srv, "secret"), "/whitelist off")

		assert.Equal(t, rcon.FailureReset, r.Failure, "behavior %d: %v", behavior, r.Err)
		assert.Equal(t, rcon.ResetMessage, r.Output)
		assert.Equal(t, int32(1), closes.Load())
	}
}

func TestSendResetDuringLogin(t *testing.T) {
	t.Parallel()

	srv := startServer(t, nil)
	srv.SetBehavior(rcontest.ResetLogin)

	var closes atomic.Int32
	d := newCountingDispatcher(&closes)
	r := d.Send(context.Background(), destinationOf(srv, "secret"), "/whitelist list")

	assert.Equal(t, rcon.FailureOther, r.Failure)
	require.Error(t, r.Err)
	assert.Equal(t, r.Err.Error(), r.Output)
	assert.NotEqual(t, rcon.ResetMessage, r.Output)
	assert.Empty(t, srv.Commands())
	assert.Equal(t, int32(1), closes.Load())
}

func TestSendLongResponse(t *testing.T) {
	t.Parallel()

	players := strings.Repeat("é", rcon.MaxResponseSize*2+100)
	srv := startServer(t, func(command string) string {
		return players
	})

	r := rcon.NewDispatcher(5*time.Second).Send(context.Background(), destinationOf(srv, "secret"), "/whitelist list")
	require.True(t, r.OK(), "unexpected failure: %v", r.Err)
	assert.Equal(t, players, r.Output)
	assert.Equal(t, []string{"/whitelist list"}, srv.Commands())
}

func TestSendLoginFailed(t *testing.T) {
	t.Parallel()

	srv := startServer(t, nil)

	var closes atomic.Int32
	d := newCountingDispatcher(&closes)
	r := d.Send(context.Background(), destinationOf(srv, "wrong"), "/whitelist reload")

	assert.Equal(t, rcon.FailureOther, r.Failure)
	assert.ErrorIs(t, r.Err, rcon.ErrAuthFailed)
	assert.Equal(t, r.Err.Error(), r.Output)
	assert.Empty(t, srv.Commands())
	assert.Equal(t, int32(1), closes.Load())
}

func TestSendTLS(t *testing.T) {
	t.Parallel()

	srv, err := rcontest.NewTLSServer("secret", func(command string) string {
		return "Whitelist is now turned on"
	})
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	var closes atomic.Int32
	d := newCountingDispatcher(&closes)

	// Self-signed certificate is rejected with verification.
	dest := destinationOf(srv, "secret")
	dest.TLSMode = config.TLSEnabled
	r := d.Send(context.Background(), dest, "/whitelist on")
	assert.Equal(t, rcon.FailureOther, r.Failure)
	assert.Equal(t, int32(1), closes.Load())

	// And accepted without.
	dest.TLSMode = config.TLSInsecure
	r = d.Send(context.Background(), dest, "/whitelist on")
	assert.True(t, r.OK(), "unexpected failure: %v", r.Err)
	assert.Equal(t, "Whitelist is now turned on", r.Output)
	assert.Equal(t, int32(2), closes.Load())
}

func TestBroadcast(t *testing.T) {
	t.Parallel()

	srv1 := startServer(t, func(command string) string { return "one: " + command })
	srv2 := startServer(t, func(command string) string { return "two: " + command })

	down, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	downPort := down.Addr().(*net.TCPAddr).Port //nolint:forcetypeassert
	require.NoError(t, down.Close())

	dests := []config.Destination{
		destinationOf(srv1, "secret"),
		{Name: "down", Host: "127.0.0.1", Port: downPort},
		destinationOf(srv2, "secret"),
	}
	dests[0].Name = "one"
	dests[2].Name = "two"

	d := rcon.NewDispatcher(5 * time.Second)
	results := d.Broadcast(context.Background(), dests, rcon.WhitelistCommand(rcon.ActionAdd, "alice"))
	require.Len(t, results, 3)

	assert.Equal(t, "one: /whitelist add alice", results[0].Output)
	assert.Equal(t, "down", results[1].Destination)
	assert.Equal(t, rcon.RefusedMessage, results[1].Output)
	assert.Equal(t, "two: /whitelist add alice", results[2].Output)
}
