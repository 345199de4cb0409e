package tor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// DefaultProxyAddress is the SOCKS port of a system Tor daemon.
const DefaultProxyAddress = "127.0.0.1:9050"

// checkProxyTimeout bounds the whole CheckConnection handshake.
const checkProxyTimeout = 2 * time.Second

// Client dials through a SOCKS5 proxy.
type Client struct {
	// proxyAddress is the proxy in "host:port" format.
	proxyAddress string

	// dialer is created once and shared by every probe.
	dialer proxy.Dialer
}

// NewClient creates a client for the SOCKS5 proxy at proxyAddress.
//
// The address is validated but the proxy is not contacted.
// Call CheckConnection to verify it is running.
func NewClient(proxyAddress string) (*Client, error) {
	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	return &Client{
		proxyAddress: proxyAddress,
		dialer:       dialer,
	}, nil
}

// isValidProxyAddress reports whether address is host:port with a port in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// ProxyAddress returns the configured proxy address.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// Dialer returns the SOCKS5 dialer. Pass it to probe.WithDialer.
func (c *Client) Dialer() proxy.Dialer {
	return c.dialer
}

// DialContext connects to address through the proxy.
func (c *Client) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if cd, ok := c.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)
	go func() {
		conn, err := c.dialer.Dial(network, address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case result := <-resultCh:
		return result.conn, result.err
	case <-ctx.Done():
		go func() {
			if r := <-resultCh; r.conn != nil {
				_ = r.conn.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

// SOCKS5 protocol constants
const (
	socks5Version       = 0x05
	socks5AuthNone      = 0x00
	socks5CmdConnect    = 0x01
	socks5AddrTypeDomID = 0x03

	// socks5CheckTarget never resolves, so a working proxy answers
	// the CONNECT with a failure code without contacting anything.
	socks5CheckTarget = "footprint-check.invalid"
)

// CheckConnection verifies that the proxy is reachable and speaks SOCKS5.
//
// It negotiates "no authentication" and sends one CONNECT request.
// Any SOCKS5 reply to the CONNECT, success or failure, counts as OK.
func (c *Client) CheckConnection(ctx context.Context) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return ProxyStatusCannotConnect
		}
	}

	if status := negotiate(conn); status != ProxyStatusOK {
		return status
	}
	return requestConnect(conn, socks5CheckTarget, 80)
}

// negotiate performs the method selection step offering no authentication.
func negotiate(conn net.Conn) ProxyStatus {
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		return readFailure(err)
	}
	if resp[0] != socks5Version || resp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}

// requestConnect sends a CONNECT for host:port and checks the reply header.
func requestConnect(conn net.Conn, host string, port uint16) ProxyStatus {
	req := []byte{socks5Version, socks5CmdConnect, 0x00, socks5AddrTypeDomID, byte(len(host))}
	req = append(req, host...)
	req = append(req, byte(port>>8), byte(port&0xFF))

	if _, err := conn.Write(req); err != nil {
		return ProxyStatusCannotConnect
	}

	// version, reply, reserved, address type
	header := make([]byte, 4)
	if _, err := io.ReadFull(conn, header); err != nil {
		return readFailure(err)
	}
	if header[0] != socks5Version {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}

func readFailure(err error) ProxyStatus {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return ProxyStatusTimeout
	}
	return ProxyStatusWrongType
}
