// Package rpcapi defines the JSON-RPC message contract of the node: the
// messages exchanged with clients, the serializer turning them into text and
// back, and the parameters of event subscriptions. Transports (HTTP,
// WebSocket) sit on top of a Serializer and are not part of this package.
package rpcapi

import (
	"bytes"
	"io"
	"reflect"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Version is the only JSON-RPC protocol version accepted.
const Version = "2.0"

// Request is an inbound call. ID is absent for notifications.
type Request struct {
	Version string              `json:"jsonrpc"`
	ID      jsoniter.RawMessage `json:"id,omitempty"`
	Method  string              `json:"method"`
	Params  jsoniter.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the caller expects no response.
func (r *Request) IsNotification() bool { return len(r.ID) == 0 }

// Response answers a Request. Exactly one of Result and Error is set.
type Response struct {
	Version string              `json:"jsonrpc"`
	ID      jsoniter.RawMessage `json:"id"`
	Result  interface{}         `json:"result,omitempty"`
	Error   *Error              `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// Notification pushes a subscription event to a client.
type Notification struct {
	Version string             `json:"jsonrpc"`
	Method  string             `json:"method"`
	Params  SubscriptionResult `json:"params"`
}

// SubscriptionResult carries one event of a subscription.
type SubscriptionResult struct {
	ID     string      `json:"subscription"`
	Result interface{} `json:"result"`
}

// NewResponse returns a successful response to id.
func NewResponse(id jsoniter.RawMessage, result interface{}) *Response {
	return &Response{Version: Version, ID: id, Result: result}
}

// NewErrorResponse returns a failed response to id.
func NewErrorResponse(id jsoniter.RawMessage, code int, msg string) *Response {
	return &Response{Version: Version, ID: id, Error: &Error{Code: code, Message: msg}}
}

// SerializationError is returned when an outbound message cannot be encoded.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string { return "rpc serialization: " + e.Err.Error() }
func (e *SerializationError) Unwrap() error { return e.Err }

// DeserializationError is returned for malformed or incomplete inbound input.
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string { return "rpc deserialization: " + e.Err.Error() }
func (e *DeserializationError) Unwrap() error { return e.Err }

// Serializer converts protocol messages to text and parses inbound requests.
type Serializer interface {
	// Marshal encodes an outbound message.
	Marshal(msg interface{}) ([]byte, error)
	// ReadRequest parses the next request from r.
	ReadRequest(r io.Reader) (*Request, error)
}

// JSONSerializer is the JSON implementation of Serializer.
type JSONSerializer struct {
	api jsoniter.API
}

// NewJSONSerializer returns a serializer compatible with encoding/json output.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{api: jsoniter.ConfigCompatibleWithStandardLibrary}
}

// Marshal implements Serializer.
func (s *JSONSerializer) Marshal(msg interface{}) ([]byte, error) {
	if isNilMessage(msg) {
		return nil, &SerializationError{Err: errors.Errorf("nil message %T", msg)}
	}
	b, err := s.api.Marshal(msg)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return b, nil
}

// ReadRequest implements Serializer. r holds a single request.
func (s *JSONSerializer) ReadRequest(r io.Reader) (*Request, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DeserializationError{Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &DeserializationError{Err: errors.Wrap(io.ErrUnexpectedEOF, "empty request")}
	}
	// the decoder substitutes U+FFFD for invalid bytes, so check the raw input
	if !utf8.Valid(data) {
		return nil, &DeserializationError{Err: errors.New("request is not valid UTF-8")}
	}
	// jsoniter reports a truncated document as a clean EOF
	if !s.api.Valid(data) {
		return nil, &DeserializationError{Err: errors.Wrap(io.ErrUnexpectedEOF, "malformed or truncated request")}
	}

	var req Request
	if err := s.api.Unmarshal(data, &req); err != nil {
		return nil, &DeserializationError{Err: err}
	}
	if req.Version != Version {
		return nil, &DeserializationError{Err: errors.Errorf("unsupported jsonrpc version %q", req.Version)}
	}
	if req.Method == "" {
		return nil, &DeserializationError{Err: errors.New("missing method")}
	}
	if err := checkID(req.ID); err != nil {
		return nil, &DeserializationError{Err: err}
	}
	return &req, nil
}

// checkID accepts an absent id, a string, a number or null.
func checkID(id jsoniter.RawMessage) error {
	t := bytes.TrimSpace(id)
	if len(t) == 0 || string(t) == "null" {
		return nil
	}
	switch c := t[0]; {
	case c == '"', c == '-', c >= '0' && c <= '9':
		return nil
	}
	return errors.Errorf("id must be a string, number or null, got %s", t)
}

func isNilMessage(msg interface{}) bool {
	if msg == nil {
		return true
	}
	v := reflect.ValueOf(msg)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Interface:
		return v.IsNil()
	}
	return false
}
