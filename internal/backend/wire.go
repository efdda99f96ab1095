package backend

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shhac/impulse/internal/domain"
)

// wireRequest is a saved request as the backend returns it from /read.
type wireRequest struct {
	ID      string          `json:"id"`
	Kind    string          `json:"kind"`
	Request json.RawMessage `json:"request"`
	History []wireHistory   `json:"history"`
}

// wireHistory is one execution record. Timestamps arrive as strings and are
// parsed client-side.
type wireHistory struct {
	RequestID  string          `json:"request_id"`
	Kind       string          `json:"kind"`
	SentAt     string          `json:"sent_at"`
	ReceivedAt string          `json:"received_at"`
	Request    json.RawMessage `json:"request"`
	Response   json.RawMessage `json:"response"`
}

// wireListing is the /list payload. The tree the backend sends is ignored;
// it is rebuilt from the preview ids.
type wireListing struct {
	Requests map[string]domain.Preview `json:"requests"`
	History  []wireHistory             `json:"history"`
}

func decodeAs[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 || string(raw) == "null" {
		return v, nil
	}
	err := json.Unmarshal(raw, &v)
	return v, err
}

func decodeRequestData(kind domain.Kind, raw json.RawMessage) (domain.RequestData, error) {
	var (
		data domain.RequestData
		err  error
	)
	switch kind {
	case domain.KindHTTP:
		data, err = decodeAs[domain.HTTPRequest](raw)
	case domain.KindSQL:
		data, err = decodeAs[domain.SQLRequest](raw)
	case domain.KindGRPC:
		data, err = decodeAs[domain.GRPCRequest](raw)
	case domain.KindJQ:
		data, err = decodeAs[domain.JQRequest](raw)
	case domain.KindRedis:
		data, err = decodeAs[domain.RedisRequest](raw)
	case domain.KindMarkdown:
		data, err = decodeAs[domain.MarkdownRequest](raw)
	default:
		return domain.NewRequestData(kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s request: %w", kind, err)
	}
	return data, nil
}

func decodeResponseData(kind domain.Kind, raw json.RawMessage) (domain.ResponseData, error) {
	var (
		data domain.ResponseData
		err  error
	)
	switch kind {
	case domain.KindHTTP:
		data, err = decodeAs[domain.HTTPResponse](raw)
	case domain.KindSQL:
		data, err = decodeAs[domain.SQLResponse](raw)
	case domain.KindGRPC:
		data, err = decodeAs[domain.GRPCResponse](raw)
	case domain.KindJQ:
		data, err = decodeAs[domain.JQResponse](raw)
	case domain.KindRedis:
		data, err = decodeAs[domain.RedisResponse](raw)
	case domain.KindMarkdown:
		data, err = decodeAs[domain.MarkdownResponse](raw)
	default:
		return domain.NewResponseData(kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", kind, err)
	}
	return data, nil
}

// parseTime accepts RFC 3339 with or without fractional seconds.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func (w wireHistory) decode() (domain.HistoryEntry, error) {
	kind, err := domain.ParseKind(w.Kind)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	sentAt, err := parseTime(w.SentAt)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	receivedAt, err := parseTime(w.ReceivedAt)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	req, err := decodeRequestData(kind, w.Request)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	resp, err := decodeResponseData(kind, w.Response)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	return domain.HistoryEntry{
		RequestID:  w.RequestID,
		SentAt:     sentAt,
		ReceivedAt: receivedAt,
		Request:    req,
		Response:   resp,
	}, nil
}

// decodeHistory parses every entry and orders them newest first. requestID
// fills entries the backend sent without one.
func decodeHistory(entries []wireHistory, requestID string) ([]domain.HistoryEntry, error) {
	out := make([]domain.HistoryEntry, 0, len(entries))
	for i, w := range entries {
		if w.RequestID == "" {
			w.RequestID = requestID
		}
		entry, err := w.decode()
		if err != nil {
			return nil, fmt.Errorf("history entry %d: %w", i, err)
		}
		out = append(out, entry)
	}
	domain.SortNewestFirst(out)
	return out, nil
}

// EncodeHistory renders an entry the way the backend sends it.
func EncodeHistory(e domain.HistoryEntry) (map[string]any, error) {
	req, err := json.Marshal(e.Request)
	if err != nil {
		return nil, err
	}
	resp, err := json.Marshal(e.Response)
	if err != nil {
		return nil, err
	}
	kind := ""
	if e.Request != nil {
		kind = string(e.Request.Kind())
	}
	return map[string]any{
		"request_id":  e.RequestID,
		"kind":        kind,
		"sent_at":     e.SentAt.Format(time.RFC3339Nano),
		"received_at": e.ReceivedAt.Format(time.RFC3339Nano),
		"request":     json.RawMessage(req),
		"response":    json.RawMessage(resp),
	}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
