package gate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"focusgate/internal/config"
	"focusgate/ports"
)

// NextDNSGate toggles a single denylist entry on a NextDNS profile. Both
// verbs PATCH the same fixed domain, so they are idempotent at the remote
// end. The client carries its own short timeout; a slow remote must never
// stall a session-start request.
type NextDNSGate struct {
	cfg    config.GateConfig
	client *http.Client
}

// NewNextDNSGate creates a gate over the NextDNS denylist API
func NewNextDNSGate(cfg config.GateConfig) ports.Gate {
	return &NextDNSGate{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Block denies access to the distraction source
func (g *NextDNSGate) Block(ctx context.Context) error {
	return g.setActive(ctx, true)
}

// Unblock allows access to the distraction source
func (g *NextDNSGate) Unblock(ctx context.Context) error {
	return g.setActive(ctx, false)
}

func (g *NextDNSGate) setActive(ctx context.Context, active bool) error {
	if !g.cfg.Configured() {
		return ports.ErrGateNotConfigured
	}

	body, err := json.Marshal(map[string]bool{"active": active})
	if err != nil {
		return fmt.Errorf("failed to encode denylist payload: %w", err)
	}

	url := fmt.Sprintf("%s/profiles/%s/denylist/%s", g.cfg.BaseURL, g.cfg.ProfileID, g.cfg.Domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build denylist request: %w", err)
	}
	req.Header.Set("X-Api-Key", g.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("denylist request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("denylist request returned %d: %s", resp.StatusCode, string(payload))
	}
	return nil
}
