package domain

import (
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/shhac/impulse/internal/errors"
)

// Kind identifies which protocol a request targets. It is the discriminant of
// RequestData and ResponseData.
type Kind string

const (
	KindHTTP     Kind = "http"
	KindSQL      Kind = "sql"
	KindGRPC     Kind = "grpc"
	KindJQ       Kind = "jq"
	KindRedis    Kind = "redis"
	KindMarkdown Kind = "md"
)

// AllKinds lists every kind in display order.
var AllKinds = []Kind{KindHTTP, KindSQL, KindGRPC, KindJQ, KindRedis, KindMarkdown}

// ParseKind validates a wire kind string.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w %q", apperrors.ErrUnknownKind, s)
}

// Label is the short upper-case badge shown next to a request.
func (k Kind) Label() string {
	switch k {
	case KindMarkdown:
		return "MD"
	default:
		return strings.ToUpper(string(k))
	}
}

// KV is an ordered header or metadata pair.
type KV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RequestData is the kind-specific request payload. The set of
// implementations is closed.
type RequestData interface {
	Kind() Kind
	isRequestData()
}

// Request is a saved request: its id doubles as its path in the tree.
type Request struct {
	ID   string
	Data RequestData
}

// HTTP methods accepted by HTTPRequest.
var HTTPMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
	http.MethodOptions,
}

type HTTPRequest struct {
	URL     string `json:"url"`
	Method  string `json:"method"`
	Body    string `json:"body"`
	Headers []KV   `json:"headers"`
}

func (HTTPRequest) Kind() Kind    { return KindHTTP }
func (HTTPRequest) isRequestData() {}

// Database is the SQL dialect of an SQLRequest.
type Database string

const (
	Postgres   Database = "postgres"
	MySQL      Database = "mysql"
	SQLite     Database = "sqlite"
	Clickhouse Database = "clickhouse"
)

// Databases lists the supported SQL dialects.
var Databases = []Database{Postgres, MySQL, SQLite, Clickhouse}

type SQLRequest struct {
	DSN      string   `json:"dsn"`
	Database Database `json:"database"`
	Query    string   `json:"query"`
}

func (SQLRequest) Kind() Kind    { return KindSQL }
func (SQLRequest) isRequestData() {}

type GRPCRequest struct {
	Target   string `json:"target"`
	Method   string `json:"method"` // fully qualified
	Payload  string `json:"payload"`
	Metadata []KV   `json:"metadata"`
}

func (GRPCRequest) Kind() Kind    { return KindGRPC }
func (GRPCRequest) isRequestData() {}

type JQRequest struct {
	Query string `json:"query"`
	JSON  string `json:"json"`
}

func (JQRequest) Kind() Kind    { return KindJQ }
func (JQRequest) isRequestData() {}

type RedisRequest struct {
	DSN   string `json:"dsn"`
	Query string `json:"query"`
}

func (RedisRequest) Kind() Kind    { return KindRedis }
func (RedisRequest) isRequestData() {}

type MarkdownRequest struct {
	Data string `json:"data"`
}

func (MarkdownRequest) Kind() Kind    { return KindMarkdown }
func (MarkdownRequest) isRequestData() {}

// NewRequestData returns the zero payload for kind, ready for decoding into.
func NewRequestData(kind Kind) (RequestData, error) {
	switch kind {
	case KindHTTP:
		return HTTPRequest{}, nil
	case KindSQL:
		return SQLRequest{}, nil
	case KindGRPC:
		return GRPCRequest{}, nil
	case KindJQ:
		return JQRequest{}, nil
	case KindRedis:
		return RedisRequest{}, nil
	case KindMarkdown:
		return MarkdownRequest{}, nil
	default:
		return nil, fmt.Errorf("%w %q", apperrors.ErrUnknownKind, kind)
	}
}

// SubKind is the secondary badge shown in previews: the HTTP method or SQL
// database, empty for other kinds.
func SubKind(data RequestData) string {
	switch d := data.(type) {
	case HTTPRequest:
		return d.Method
	case SQLRequest:
		return string(d.Database)
	default:
		return ""
	}
}

// Clone returns a deep copy so slices are never shared between a snapshot
// and an edited value.
func Clone(data RequestData) RequestData {
	switch d := data.(type) {
	case HTTPRequest:
		d.Headers = cloneKVs(d.Headers)
		return d
	case GRPCRequest:
		d.Metadata = cloneKVs(d.Metadata)
		return d
	default:
		return data
	}
}

func cloneKVs(kvs []KV) []KV {
	if kvs == nil {
		return nil
	}
	out := make([]KV, len(kvs))
	copy(out, kvs)
	return out
}

// DefaultRequest is the payload a freshly created request of kind starts with.
func DefaultRequest(kind Kind) (RequestData, error) {
	switch kind {
	case KindHTTP:
		return HTTPRequest{Method: http.MethodGet}, nil
	case KindSQL:
		return SQLRequest{Database: Postgres}, nil
	case KindGRPC:
		return GRPCRequest{Payload: "{}"}, nil
	case KindJQ:
		return JQRequest{Query: ".", JSON: "{}"}, nil
	case KindRedis:
		return RedisRequest{DSN: "localhost:6379", Query: "KEYS"}, nil
	case KindMarkdown:
		return MarkdownRequest{}, nil
	default:
		return nil, fmt.Errorf("%w %q", apperrors.ErrUnknownKind, kind)
	}
}
