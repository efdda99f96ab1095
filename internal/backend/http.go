package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/shhac/impulse/internal/errors"
)

// RequestIDHeader carries the per-call correlation id.
const RequestIDHeader = "X-Request-Id"

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 4 << 10

// HTTPTransport posts every call as a JSON object to a single endpoint, with
// the route in the ROUTE field.
type HTTPTransport struct {
	stateTracker
	url    string
	client *http.Client
}

// NewHTTPTransport creates a transport for the backend endpoint at url. A nil
// client means http.DefaultClient.
func NewHTTPTransport(url string, client *http.Client, logger *slog.Logger) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{
		stateTracker: stateTracker{logger: logger},
		url:          url,
		client:       client,
	}
}

// errorBody is what the backend replies with when an operation fails.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b errorBody) err() error {
	switch {
	case b.Error != "" && b.Message != "":
		return fmt.Errorf("%s: %s", b.Message, b.Error)
	case b.Error != "":
		return errors.New(b.Error)
	default:
		return errors.New(b.Message)
	}
}

func (t *HTTPTransport) Call(ctx context.Context, route Route, params Params, out any) error {
	body := make(map[string]any, len(params)+1)
	for k, v := range params {
		body[k] = v
	}
	body["ROUTE"] = string(route)

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", route, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", route, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if id := CallIDFrom(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", route, ctxErr)
		}
		t.updateState(StateError, err.Error())
		return fmt.Errorf("%w: %v", apperrors.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	t.updateState(StateConnected, "Connected to "+t.url)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", route, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(data, &eb) != nil || (eb.Error == "" && eb.Message == "") {
			if len(data) > maxErrorBody {
				data = data[:maxErrorBody]
			}
			eb.Error = fmt.Sprintf("%s: %s", resp.Status, bytes.TrimSpace(data))
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %v", apperrors.ErrNotFound, eb.err())
		}
		return eb.err()
	}

	// Some handlers report failures in a 200 body.
	if len(data) > 0 && data[0] == '{' {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			return eb.err()
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", route, err)
	}
	return nil
}

// Close releases idle connections.
func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
