package tor

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/tornago"
)

// DefaultStartupTimeout is how long Tor may take to bootstrap.
const DefaultStartupTimeout = 3 * time.Minute

// EmbeddedTor runs a private Tor daemon for the lifetime of one command.
//
// Bootstrapping takes one to three minutes: Tor has to fetch directory
// information and build circuits before the SOCKS port is usable.
type EmbeddedTor struct {
	process        *tornago.TorProcess
	socksAddr      string
	controlAddr    string
	startupTimeout time.Duration
}

// EmbeddedTorOption configures an EmbeddedTor instance.
type EmbeddedTorOption func(*EmbeddedTor)

// WithStartupTimeout sets the maximum time to wait for Tor to bootstrap.
// Non-positive values are ignored.
func WithStartupTimeout(timeout time.Duration) EmbeddedTorOption {
	return func(e *EmbeddedTor) {
		if timeout > 0 {
			e.startupTimeout = timeout
		}
	}
}

// NewEmbeddedTor creates a new embedded Tor manager.
// Call Start to launch the daemon.
func NewEmbeddedTor(opts ...EmbeddedTorOption) *EmbeddedTor {
	e := &EmbeddedTor{
		startupTimeout: DefaultStartupTimeout,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Start launches the daemon on OS-assigned ports and waits for it to bootstrap.
//
// If ctx is cancelled first, Start returns ctx.Err() and the daemon is
// stopped as soon as its launch returns.
func (e *EmbeddedTor) Start(ctx context.Context) error {
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(e.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	type startResult struct {
		process *tornago.TorProcess
		err     error
	}
	resultCh := make(chan startResult, 1)
	go func() {
		process, err := tornago.StartTorDaemon(launchCfg)
		resultCh <- startResult{process, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-resultCh; r.err == nil {
				_ = r.process.Stop() //nolint:errcheck // best effort cleanup
			}
		}()
		return ctx.Err()
	case r := <-resultCh:
		if r.err != nil {
			return fmt.Errorf("failed to start embedded Tor daemon: %w", r.err)
		}
		e.process = r.process
		e.socksAddr = r.process.SocksAddr()
		e.controlAddr = r.process.ControlAddr()
		return nil
	}
}

// Stop shuts the daemon down. It is safe to call on an unstarted instance
// and more than once.
func (e *EmbeddedTor) Stop() error {
	if e.process == nil {
		return nil
	}

	err := e.process.Stop()
	e.process = nil
	e.socksAddr = ""
	e.controlAddr = ""
	return err
}

// SocksAddr returns the SOCKS5 address of the running daemon, or "".
func (e *EmbeddedTor) SocksAddr() string {
	return e.socksAddr
}

// ControlAddr returns the control port address of the running daemon, or "".
func (e *EmbeddedTor) ControlAddr() string {
	return e.controlAddr
}

// IsRunning reports whether the daemon has been started and not stopped.
func (e *EmbeddedTor) IsRunning() bool {
	return e.process != nil
}

// NewClient returns a Client for the daemon's SOCKS port.
func (e *EmbeddedTor) NewClient() (*Client, error) {
	if !e.IsRunning() {
		return nil, ErrTorNotRunning
	}
	return NewClient(e.socksAddr)
}
