package realtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const DefaultSDPURL = "https://api.openai.com/v1/realtime"

// SDPExchanger relays a browser's WebRTC offer to the service and returns the answer,
// so the API key never leaves the server.
type SDPExchanger struct {
	HTTPClient *http.Client
	BaseURL    string
}

// NewSDPExchanger sets no client timeout; the request context bounds the exchange.
func NewSDPExchanger() *SDPExchanger {
	return &SDPExchanger{
		HTTPClient: &http.Client{},
		BaseURL:    DefaultSDPURL,
	}
}

// Exchange posts offer as application/sdp and returns the answer SDP.
func (s *SDPExchanger) Exchange(ctx context.Context, apiKey, model, offer string) (string, error) {
	if strings.TrimSpace(offer) == "" {
		return "", errors.New("realtime: empty sdp offer")
	}
	if apiKey == "" {
		return "", errors.New("realtime: api key is required")
	}

	target, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", fmt.Errorf("realtime: bad sdp url: %w", err)
	}
	q := target.Query()
	q.Set("model", model)
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewBufferString(offer))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/sdp")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("realtime: sdp exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Code: resp.StatusCode}
	}
	answer, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("realtime: read sdp answer: %w", err)
	}
	return string(answer), nil
}
