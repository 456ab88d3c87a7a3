package tor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Settings selects how a Session reaches Tor.
type Settings struct {
	// External uses the proxy at ProxyAddress instead of an embedded daemon.
	External       bool
	ProxyAddress   string
	StartupTimeout time.Duration
	RequestTimeout time.Duration
}

// Session is a ready-to-use Tor connection, backed by either an external
// proxy or an embedded daemon. Close releases the daemon, if any.
type Session struct {
	client   *Client
	embedded *EmbeddedTor
}

// Connect opens a Session. With an external proxy the proxy is checked
// first so a stopped Tor service is reported before any lookup runs.
func Connect(ctx context.Context, s Settings, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if s.External {
		client, err := NewClient(s.ProxyAddress, s.RequestTimeout)
		if err != nil {
			return nil, err
		}
		if status := client.CheckConnection(ctx); status != ProxyStatusOK {
			return nil, fmt.Errorf("tor proxy %s: %w", s.ProxyAddress, status.Error())
		}
		logger.Debug("using external Tor proxy", "proxy", s.ProxyAddress)
		return &Session{client: client}, nil
	}

	logger.Info("starting embedded Tor daemon", "timeout", s.StartupTimeout)
	embedded := NewEmbeddedTor(WithStartupTimeout(s.StartupTimeout))
	if err := embedded.Start(ctx); err != nil {
		return nil, err
	}
	client, err := embedded.NewClient(s.RequestTimeout)
	if err != nil {
		_ = embedded.Stop() //nolint:errcheck // client creation failed
		return nil, err
	}
	logger.Debug("embedded Tor daemon ready", "socks", embedded.SocksAddr())
	return &Session{client: client, embedded: embedded}, nil
}

// HTTPClient returns an HTTP client routed through Tor.
func (s *Session) HTTPClient() *http.Client {
	return s.client.NewHTTPClient()
}

// ProxyAddress returns the SOCKS5 address in use.
func (s *Session) ProxyAddress() string {
	return s.client.ProxyAddress()
}

// Close stops the embedded daemon, if the session started one.
func (s *Session) Close() error {
	if s == nil || s.embedded == nil {
		return nil
	}
	return s.embedded.Stop()
}
