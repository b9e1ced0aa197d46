package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"chordhash/chord"
)

// Client is the default chord.Transport: one POST per request, with
// bounded retry on transient failures, grounded on specter's
// chord/local_membership.go retryableWrapper pattern.
type Client struct {
	http    *http.Client
	logger  *zap.Logger
	retries uint
	delay   time.Duration
}

// NewClient returns a Transport dialing peers over plain HTTP within
// timeout per call, making at most retries attempts per Send, the
// first one included.
func NewClient(timeout time.Duration, retries uint, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		retries: retries,
		delay:   50 * time.Millisecond,
	}
}

// Send implements chord.Transport.
func (c *Client) Send(ctx context.Context, to chord.PeerDescriptor, req chord.Envelope) (chord.Envelope, error) {
	return retry.DoWithData(func() (chord.Envelope, error) {
		return c.send(ctx, to, req)
	},
		retry.Context(ctx),
		retry.Attempts(c.retries),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying outbound envelope",
				zap.String("target", to.Addr()), zap.Uint("attempt", n), zap.Error(err))
		}),
	)
}

func (c *Client) send(ctx context.Context, to chord.PeerDescriptor, req chord.Envelope) (chord.Envelope, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return chord.Envelope{}, fmt.Errorf("marshaling envelope: %w", err)
	}

	url := fmt.Sprintf("http://%s/chord", to.Addr())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return chord.Envelope{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return chord.Envelope{}, fmt.Errorf("dialing %s: %w", to.Addr(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return chord.Envelope{}, fmt.Errorf("%s replied with status %d", to.Addr(), resp.StatusCode)
	}

	var out chord.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return chord.Envelope{}, fmt.Errorf("decoding response from %s: %w", to.Addr(), err)
	}
	return out, nil
}
