// Package loki pushes notification events to Grafana Loki.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"promanage/backend/internal/notification"
)

// PushRequest is the Loki push API (v1) request body.
type PushRequest struct {
	Streams []Stream `json:"streams"`
}

// Stream is one label set and its entries; each value is [timestamp_ns, line].
type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

var labelSanitize = regexp.MustCompile(`[^a-zA-Z0-9_\-:.]`)

// Client pushes log lines to a Loki base URL such as http://localhost:3100.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a Client with a bounded HTTP timeout.
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

// PushEventJSON decodes a Kafka message value as a notification event and pushes
// its message with an event_type label. Undecodable values are pushed raw.
func (c *Client) PushEventJSON(ctx context.Context, raw []byte) error {
	ev, err := notification.Decode(raw)
	if err != nil || ev.Type == "" {
		return c.Push(ctx, time.Now().UTC(), string(raw), nil)
	}
	ts := ev.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	line, err := json.Marshal(map[string]any{"message": ev.Message(), "event": ev})
	if err != nil {
		return err
	}
	return c.Push(ctx, ts, string(line), map[string]string{"event_type": string(ev.Type)})
}

// Push sends one line. Non-2xx responses are errors.
func (c *Client) Push(ctx context.Context, ts time.Time, line string, labels map[string]string) error {
	if c.BaseURL == "" {
		return fmt.Errorf("loki: base URL is empty")
	}
	streamLabels := map[string]string{"job": "promanage"}
	for k, v := range labels {
		if s := labelSanitize.ReplaceAllString(strings.TrimSpace(v), "_"); s != "" {
			streamLabels[k] = s
		}
	}
	payload, err := json.Marshal(PushRequest{Streams: []Stream{{
		Stream: streamLabels,
		Values: [][]string{{strconv.FormatInt(ts.UnixNano(), 10), line}},
	}}})
	if err != nil {
		return err
	}
	url := strings.TrimSuffix(c.BaseURL, "/") + "/loki/api/v1/push"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("loki: push returned %s", resp.Status)
	}
	return nil
}
