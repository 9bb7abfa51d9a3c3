package rpcapi

import (
	"errors"
	"io"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-asset-chain/opera"
)

// TestJSONSerializer_ReadRequest covers valid and rejected inbound requests.
func TestJSONSerializer_ReadRequest(t *testing.T) {
	s := NewJSONSerializer()

	req, err := s.ReadRequest(strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"eth_subscribe","params":["newHeads"]}`))
	require.NoError(t, err)
	require.Equal(t, "eth_subscribe", req.Method)
	require.Equal(t, "1", string(req.ID))
	require.False(t, req.IsNotification())

	note, err := s.ReadRequest(strings.NewReader(`{"jsonrpc":"2.0","method":"ping"}`))
	require.NoError(t, err)
	require.True(t, note.IsNotification())

	bad := []struct {
		name  string
		input string
	}{
		{"empty", ``},
		{"truncated", `{"jsonrpc":"2.0","id":1,"meth`},
		{"not an object", `[1,2,3]`},
		{"missing version", `{"id":1,"method":"x"}`},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"x"}`},
		{"missing method", `{"jsonrpc":"2.0","id":1}`},
		{"object id", `{"jsonrpc":"2.0","id":{"a":1},"method":"x"}`},
		{"array id", `{"jsonrpc":"2.0","id":[1],"method":"x"}`},
		{"bool id", `{"jsonrpc":"2.0","id":true,"method":"x"}`},
		{"invalid utf8 method", "{\"jsonrpc\":\"2.0\",\"id\":1,\"method\":\"eth_\xff\xfe\"}"},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ReadRequest(strings.NewReader(tt.input))
			var de *DeserializationError
			require.True(t, errors.As(err, &de), "got %v", err)
		})
	}

	_, err = s.ReadRequest(strings.NewReader(``))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	for _, id := range []string{`"abc"`, `-3`, `0`} {
		req, err := s.ReadRequest(strings.NewReader(`{"jsonrpc":"2.0","id":` + id + `,"method":"eth_chainId"}`))
		require.NoError(t, err, id)
		require.Equal(t, id, string(req.ID))
	}
	_, err = s.ReadRequest(strings.NewReader(`{"jsonrpc":"2.0","id":null,"method":"eth_chainId"}`))
	require.NoError(t, err)
}

// TestJSONSerializer_Marshal covers outbound encoding.
func TestJSONSerializer_Marshal(t *testing.T) {
	s := NewJSONSerializer()

	b, err := s.Marshal(NewResponse(jsoniter.RawMessage(`7`), "0x1"))
	require.NoError(t, err)
	require.JSONEq(t, `{"jsonrpc":"2.0","id":7,"result":"0x1"}`, string(b))

	b, err = s.Marshal(NewErrorResponse(jsoniter.RawMessage(`"a"`), -32601, "method not found"))
	require.NoError(t, err)
	require.JSONEq(t, `{"jsonrpc":"2.0","id":"a","error":{"code":-32601,"message":"method not found"}}`, string(b))

	var se *SerializationError
	_, err = s.Marshal(nil)
	require.True(t, errors.As(err, &se))
	_, err = s.Marshal((*Response)(nil))
	require.True(t, errors.As(err, &se))
	_, err = s.Marshal((*Notification)(nil))
	require.True(t, errors.As(err, &se))
	_, err = s.Marshal(NewResponse(jsoniter.RawMessage(`1`), make(chan int)))
	require.True(t, errors.As(err, &se))
}

// TestRulesetView verifies the RPC view of a resolved ruleset.
func TestRulesetView(t *testing.T) {
	cfg, err := opera.ForNetwork(opera.DevNet)
	require.NoError(t, err)
	cfg.Seal()
	r, err := opera.NewResolver(cfg)
	require.NoError(t, err)

	view := NewRulesetView(r, 16)
	b, err := NewJSONSerializer().Marshal(NewResponse(jsoniter.RawMessage(`1`), view))
	require.NoError(t, err)

	out := string(b)
	require.Contains(t, out, `"network":"dev"`)
	require.Contains(t, out, `"height":"0x10"`)
	require.Contains(t, out, `"forkId":"`+r.ForkID().String()+`"`)
	require.Contains(t, out, `"chainId":4003`)
}
