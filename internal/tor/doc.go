// Package tor routes probes through a SOCKS5 proxy.
//
// A Client wraps a SOCKS5 dialer for an existing proxy (a system Tor daemon
// on 127.0.0.1:9050, or any other SOCKS5 server) and can verify that the
// proxy actually speaks SOCKS5 before a batch starts. EmbeddedTor launches
// a private Tor daemon through tornago for users who have none running.
package tor
