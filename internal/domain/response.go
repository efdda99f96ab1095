package domain

import (
	"fmt"

	apperrors "github.com/shhac/impulse/internal/errors"
)

// ResponseData is the kind-specific result of performing a request.
type ResponseData interface {
	Kind() Kind
	isResponseData()
}

type HTTPResponse struct {
	Code    int    `json:"code"`
	Body    string `json:"body"`
	Headers []KV   `json:"headers"`
}

func (HTTPResponse) Kind() Kind     { return KindHTTP }
func (HTTPResponse) isResponseData() {}

// ColumnType is the display type of an SQL result column.
type ColumnType string

const (
	ColumnTypeString  ColumnType = "string"
	ColumnTypeNumber  ColumnType = "number"
	ColumnTypeTime    ColumnType = "time"
	ColumnTypeBoolean ColumnType = "boolean"
)

type SQLResponse struct {
	Columns []string     `json:"columns"`
	Types   []ColumnType `json:"types"`
	Rows    [][]any      `json:"rows"`
}

func (SQLResponse) Kind() Kind     { return KindSQL }
func (SQLResponse) isResponseData() {}

type GRPCResponse struct {
	Response string `json:"response"`
	// https://grpc.io/docs/guides/status-codes/#the-full-list-of-status-codes
	Code     int  `json:"code"`
	Metadata []KV `json:"metadata"`
}

func (GRPCResponse) Kind() Kind     { return KindGRPC }
func (GRPCResponse) isResponseData() {}

type JQResponse struct {
	Response []string `json:"response"`
}

func (JQResponse) Kind() Kind     { return KindJQ }
func (JQResponse) isResponseData() {}

type RedisResponse struct {
	Response string `json:"response"`
}

func (RedisResponse) Kind() Kind     { return KindRedis }
func (RedisResponse) isResponseData() {}

type MarkdownResponse struct {
	Data string `json:"data"`
}

func (MarkdownResponse) Kind() Kind     { return KindMarkdown }
func (MarkdownResponse) isResponseData() {}

// NewResponseData returns the zero response for kind.
func NewResponseData(kind Kind) (ResponseData, error) {
	switch kind {
	case KindHTTP:
		return HTTPResponse{}, nil
	case KindSQL:
		return SQLResponse{}, nil
	case KindGRPC:
		return GRPCResponse{}, nil
	case KindJQ:
		return JQResponse{}, nil
	case KindRedis:
		return RedisResponse{}, nil
	case KindMarkdown:
		return MarkdownResponse{}, nil
	default:
		return nil, fmt.Errorf("%w %q", apperrors.ErrUnknownKind, kind)
	}
}
