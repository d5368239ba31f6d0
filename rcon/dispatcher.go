package rcon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mycoria/whitelist/config"
)

// Failure classifies why a command could not be delivered.
type Failure uint8

// Failures.
const (
	FailureNone Failure = iota
	FailureRefused
	FailureReset
	FailureOther
)

// Messages reported for classified failures.
const (
	RefusedMessage = "The connection could not be made as the server actively refused it."
	ResetMessage   = "The connection was terminated, the server may have been stopped."
)

// String returns a short name of the failure.
func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureRefused:
		return "refused"
	case FailureReset:
		return "reset"
	case FailureOther:
		return "other"
	default:
		return "unknown"
	}
}

// Result is the outcome of sending a command to a destination.
type Result struct {
	Destination string
	Output      string
	Failure     Failure
	Err         error
}

// OK returns whether the command was delivered and answered.
func (r Result) OK() bool {
	return r.Failure == FailureNone
}

// Dispatcher sends commands to destinations, one connection per command.
type Dispatcher struct {
	// Timeout limits a whole exchange with a destination.
	// Zero means no limit.
	Timeout time.Duration

	// Dial opens the underlying connection. Defaults to a net.Dialer.
	Dial DialFunc
}

// NewDispatcher returns a new dispatcher.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		Timeout: timeout,
	}
}

// Send connects to the destination, sends the command and returns the
// response. Errors are never returned, but classified into the result.
func (d *Dispatcher) Send(ctx context.Context, dest config.Destination, command string) Result {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	conn, err := Dial(ctx, dest.Address(), dest.Password, Options{
		TLSMode:    dest.TLSMode,
		ServerName: dest.Host,
		Dial:       d.Dial,
	})
	if err != nil {
		return failed(dest, err, classifyConnect(err))
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Debug("failed to close connection", "destination", dest.Name, "err", err)
		}
	}()

	slog.Debug("sending command", "destination", dest.Name, "command", command)
	output, err := conn.Command(command)
	if err != nil {
		return failed(dest, err, classifyCommand(err))
	}
	return Result{
		Destination: dest.Name,
		Output:      output,
	}
}

// Broadcast sends the command to all destinations, one after another.
func (d *Dispatcher) Broadcast(ctx context.Context, dests []config.Destination, command string) []Result {
	results := make([]Result, 0, len(dests))
	for _, dest := range dests {
		results = append(results, d.Send(ctx, dest, command))
	}
	return results
}

func failed(dest config.Destination, err error, failure Failure) Result {
	slog.Debug("command failed", "destination", dest.Name, "failure", failure, "err", err)

	r := Result{
		Destination: dest.Name,
		Failure:     failure,
		Err:         err,
	}
	switch failure {
	case FailureRefused:
		r.Output = RefusedMessage
	case FailureReset:
		r.Output = ResetMessage
	default:
		r.Output = err.Error()
	}
	return r
}

// classifyConnect classifies errors while connecting and logging in.
// Only a refused connection has its own message there.
func classifyConnect(err error) Failure {
	switch {
	case err == nil:
		return FailureNone
	case isRefused(err):
		return FailureRefused
	default:
		return FailureOther
	}
}

// classifyCommand classifies errors while a command is in flight.
func classifyCommand(err error) Failure {
	switch {
	case err == nil:
		return FailureNone
	case isReset(err),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return FailureReset
	default:
		return FailureOther
	}
}

// Action is a whitelist sub-command understood by game servers.
type Action string

// Whitelist actions.
const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
	ActionList   Action = "list"
	ActionOn     Action = "on"
	ActionOff    Action = "off"
	ActionReload Action = "reload"
)

// WhitelistCommand builds the console command for the given action.
func WhitelistCommand(action Action, names ...string) string {
	if len(names) == 0 {
		return "/whitelist " + string(action)
	}
	return "/whitelist " + string(action) + " " + strings.Join(names, " ")
}
