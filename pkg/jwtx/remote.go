package jwtx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultRefreshInterval is how often the remote JWKS is re-fetched when the
// caller does not configure an interval.
const DefaultRefreshInterval = 15 * time.Minute

// oidcConfiguration is the slice of the issuer's discovery document we need.
type oidcConfiguration struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// RemoteKeySet keeps a KeySet populated from the authorization server's
// published JWKS endpoint. Refreshes happen on a fixed interval; a failed
// refresh keeps the last good key set so verification stays available while
// the authorization server is briefly unreachable.
type RemoteKeySet struct {
	keys     *KeySet
	jwksURL  string
	client   *http.Client
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// RemoteKeySetConfig configures a RemoteKeySet.
type RemoteKeySetConfig struct {
	// IssuerURI locates the authorization server. Used to discover the JWKS
	// endpoint via /.well-known/openid-configuration when JWKSURL is empty.
	IssuerURI string

	// JWKSURL points directly at the JWKS document, skipping discovery.
	JWKSURL string

	// RefreshInterval between JWKS fetches. Zero means DefaultRefreshInterval.
	RefreshInterval time.Duration

	// HTTPClient used for discovery and fetches. Zero value gets a client
	// with a 10s timeout.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// NewRemoteKeySet resolves the JWKS location, performs the initial fetch, and
// starts the background refresher. Call Close to stop refreshing.
func NewRemoteKeySet(ctx context.Context, cfg RemoteKeySetConfig) (*RemoteKeySet, error) {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		discovered, err := discoverJWKSURL(ctx, client, cfg.IssuerURI)
		if err != nil {
			return nil, err
		}
		jwksURL = discovered
	}

	rks := &RemoteKeySet{
		keys:     NewKeySet(),
		jwksURL:  jwksURL,
		client:   client,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}

	if err := rks.fetch(ctx); err != nil {
		return nil, fmt.Errorf("jwtx: initial JWKS fetch: %w", err)
	}

	refreshCtx, cancel := context.WithCancel(context.Background())
	rks.cancel = cancel
	go rks.refreshLoop(refreshCtx)

	return rks, nil
}

// Keys exposes the underlying KeySet for verifiers and readiness checks.
func (r *RemoteKeySet) Keys() *KeySet { return r.keys }

// Close stops the background refresher.
func (r *RemoteKeySet) Close() {
	r.cancel()
	<-r.done
}

func (r *RemoteKeySet) refreshLoop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.fetch(ctx); err != nil {
				// Keep serving the previous key set.
				r.logger.Warn("jwks refresh failed", "url", r.jwksURL, "err", err)
			}
		}
	}
}

func (r *RemoteKeySet) fetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.jwksURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwtx: JWKS endpoint returned status %d", resp.StatusCode)
	}

	var jwks JWKS
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return fmt.Errorf("jwtx: decode JWKS: %w", err)
	}
	if len(jwks.Keys) == 0 {
		return fmt.Errorf("jwtx: JWKS document contains no keys")
	}

	return r.keys.ResetFromJWKS(jwks)
}

// discoverJWKSURL reads the issuer's OIDC discovery document and returns the
// advertised jwks_uri.
func discoverJWKSURL(ctx context.Context, client *http.Client, issuer string) (string, error) {
	if issuer == "" {
		return "", fmt.Errorf("jwtx: issuer URI required for JWKS discovery")
	}
	wellKnown := strings.TrimSuffix(issuer, "/") + "/.well-known/openid-configuration"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnown, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("jwtx: fetch OIDC configuration: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("jwtx: OIDC discovery returned status %d", resp.StatusCode)
	}

	var doc oidcConfiguration
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("jwtx: decode OIDC configuration: %w", err)
	}
	if doc.JWKSURI == "" {
		return "", fmt.Errorf("jwtx: OIDC configuration missing jwks_uri")
	}
	return doc.JWKSURI, nil
}
