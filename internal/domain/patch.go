package domain

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/shhac/impulse/internal/errors"
)

// Patch is a partial update for one request kind. Nil fields are left as they
// are. Apply never mutates its argument: it returns the patched copy, or an
// error when the patch targets another kind or the result is invalid.
type Patch interface {
	Kind() Kind
	Apply(RequestData) (RequestData, error)
}

func mismatch(p Patch, data RequestData) error {
	return fmt.Errorf("%w: %s patch on %s request", apperrors.ErrKindMismatch, p.Kind(), data.Kind())
}

// HTTPPatch edits an HTTP request. Nil fields are left unchanged.
type HTTPPatch struct {
	URL     *string
	Method  *string
	Body    *string
	Headers *[]KV
}

// Kind reports the request kind the patch applies to.
func (HTTPPatch) Kind() Kind { return KindHTTP }

// Apply returns a copy of data with the set fields replaced. The method is
// upper-cased and must be one of HTTPMethods.
func (p HTTPPatch) Apply(data RequestData) (RequestData, error) {
	req, ok := data.(HTTPRequest)
	if !ok {
		return nil, mismatch(p, data)
	}
	req = Clone(req).(HTTPRequest)
	if p.URL != nil {
		req.URL = *p.URL
	}
	if p.Method != nil {
		req.Method = strings.ToUpper(strings.TrimSpace(*p.Method))
	}
	if p.Body != nil {
		req.Body = *p.Body
	}
	if p.Headers != nil {
		req.Headers = cloneKVs(*p.Headers)
	}
	if !slices.Contains(HTTPMethods, req.Method) {
		return nil, apperrors.ValidationError{Field: "method", Message: fmt.Sprintf("unsupported HTTP method %q", req.Method)}
	}
	return req, nil
}

// SQLPatch edits a SQL request. Nil fields are left unchanged.
type SQLPatch struct {
	DSN      *string
	Database *Database
	Query    *string
}

// Kind reports the request kind the patch applies to.
func (SQLPatch) Kind() Kind { return KindSQL }

// Apply returns data with the set fields replaced. The database must be one of
// Databases.
func (p SQLPatch) Apply(data RequestData) (RequestData, error) {
	req, ok := data.(SQLRequest)
	if !ok {
		return nil, mismatch(p, data)
	}
	if p.DSN != nil {
		req.DSN = *p.DSN
	}
	if p.Database != nil {
		req.Database = *p.Database
	}
	if p.Query != nil {
		req.Query = *p.Query
	}
	if !slices.Contains(Databases, req.Database) {
		return nil, apperrors.ValidationError{Field: "database", Message: fmt.Sprintf("unsupported database %q", req.Database)}
	}
	return req, nil
}

// GRPCPatch edits a gRPC request. Nil fields are left unchanged.
type GRPCPatch struct {
	Target   *string
	Method   *string
	Payload  *string
	Metadata *[]KV
}

// Kind reports the request kind the patch applies to.
func (GRPCPatch) Kind() Kind { return KindGRPC }

// Apply returns a copy of data with the set fields replaced.
func (p GRPCPatch) Apply(data RequestData) (RequestData, error) {
	req, ok := data.(GRPCRequest)
	if !ok {
		return nil, mismatch(p, data)
	}
	req = Clone(req).(GRPCRequest)
	if p.Target != nil {
		req.Target = *p.Target
	}
	if p.Method != nil {
		req.Method = *p.Method
	}
	if p.Payload != nil {
		req.Payload = *p.Payload
	}
	if p.Metadata != nil {
		req.Metadata = cloneKVs(*p.Metadata)
	}
	return req, nil
}

// JQPatch edits a jq request. Nil fields are left unchanged.
type JQPatch struct {
	Query *string
	JSON  *string
}

// Kind reports the request kind the patch applies to.
func (JQPatch) Kind() Kind { return KindJQ }

// Apply returns data with the set fields replaced.
func (p JQPatch) Apply(data RequestData) (RequestData, error) {
	req, ok := data.(JQRequest)
	if !ok {
		return nil, mismatch(p, data)
	}
	if p.Query != nil {
		req.Query = *p.Query
	}
	if p.JSON != nil {
		req.JSON = *p.JSON
	}
	return req, nil
}

// RedisPatch edits a Redis request. Nil fields are left unchanged.
type RedisPatch struct {
	DSN   *string
	Query *string
}

// Kind reports the request kind the patch applies to.
func (RedisPatch) Kind() Kind { return KindRedis }

// Apply returns data with the set fields replaced.
func (p RedisPatch) Apply(data RequestData) (RequestData, error) {
	req, ok := data.(RedisRequest)
	if !ok {
		return nil, mismatch(p, data)
	}
	if p.DSN != nil {
		req.DSN = *p.DSN
	}
	if p.Query != nil {
		req.Query = *p.Query
	}
	return req, nil
}

// MarkdownPatch edits a markdown note.
type MarkdownPatch struct {
	Data *string
}

// Kind reports the request kind the patch applies to.
func (MarkdownPatch) Kind() Kind { return KindMarkdown }

// Apply returns data with the note text replaced when Data is set.
func (p MarkdownPatch) Apply(data RequestData) (RequestData, error) {
	req, ok := data.(MarkdownRequest)
	if !ok {
		return nil, mismatch(p, data)
	}
	if p.Data != nil {
		req.Data = *p.Data
	}
	return req, nil
}

// Ptr is a helper for building patches from literals.
func Ptr[T any](v T) *T { return &v }
