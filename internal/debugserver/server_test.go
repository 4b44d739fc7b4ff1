package debugserver

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/peerwire/pkg/ids"
	"github.com/vango-dev/peerwire/pkg/message"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := message.NewPrometheusMetrics(message.WithRegistry(reg), message.WithNamespace("test"))
	codec := message.NewCodec(message.WithMetrics(metrics))
	return New(Options{Codec: codec, Gatherer: reg})
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestOps(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/v1/ops", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ops []OpInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ops))
	require.Len(t, ops, len(message.Ops()))
	assert.Equal(t, OpInfo{Name: "pong", Code: 3, Wire: true}, ops[0])

	byName := map[string]OpInfo{}
	for _, op := range ops {
		byName[op.Name] = op
	}
	assert.True(t, byName["put"].Compressible)
	assert.False(t, byName["timeout"].Wire)
}

func TestOpLookup(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/v1/ops/app_gossip", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var op OpInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &op))
	assert.Equal(t, OpInfo{Name: "app_gossip", Code: 22, Wire: true, Compressible: true}, op)

	rec = do(t, s, http.MethodGet, "/v1/ops/gossip", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"PW010"`)
}

func TestEncodePlain(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"op": "pong", "uptimePct": 7}`)

	rec := do(t, s, http.MethodPost, "/v1/encode", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp EncodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, EncodeResponse{Op: "pong", Mode: "plain", Bytes: 6, Frame: "000000020307"}, resp)

	// the codec behind the server records into the served registry
	rec = do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_codec_frames_total{mode="plain",op="pong"} 1`)
}

func TestEncodeCompressed(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"op": "app_gossip", "chainId": "` + ids.Empty.Hex() + `", "appBytes": "` +
		strings.Repeat("AAAA", 64) + `"}`)

	rec := do(t, s, http.MethodPost, "/v1/encode?compressed=true", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp EncodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "compressed", resp.Mode)

	frame, err := hex.DecodeString(resp.Frame)
	require.NoError(t, err)
	info, err := message.Inspect(frame)
	require.NoError(t, err)
	assert.True(t, info.Compressed)
	assert.Len(t, info.Fields, 32+4+192)
}

func TestEncodeErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"bad_json", "/v1/encode", `{"op":`, http.StatusBadRequest, "PW016"},
		{"unknown_op", "/v1/encode", `{"op": "gossip"}`, http.StatusBadRequest, "PW010"},
		{"internal_op", "/v1/encode", `{"op": "timeout"}`, http.StatusBadRequest, "PW017"},
		{"bad_mode_param", "/v1/encode?compressed=maybe", `{"op": "ping"}`, http.StatusBadRequest, "PW040"},
		{"not_compressible", "/v1/encode?compressed=1", `{"op": "ping"}`, http.StatusUnprocessableEntity, "PW011"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.target, []byte(tt.body))
			assert.Equal(t, tt.status, rec.Code)

			var got map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.code, got["code"])
		})
	}
}

func TestEncodeCapacity(t *testing.T) {
	s := New(Options{Codec: message.NewCodec(message.WithMaxSize(5)), Gatherer: prometheus.NewRegistry()})

	rec := do(t, s, http.MethodPost, "/v1/encode", []byte(`{"op": "pong", "uptimePct": 1}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"PW012"`)
}

func TestInspect(t *testing.T) {
	s := newTestServer(t)
	frame, err := message.Encode(message.Pong{UptimePct: 7}, message.Plain)
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/v1/inspect", frame)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, InspectResponse{
		Op:           "pong",
		Code:         3,
		BodyLen:      2,
		WireFieldLen: 1,
		FieldLen:     1,
		Fields:       "07",
	}, resp)

	rec = do(t, s, http.MethodPost, "/v1/inspect", []byte{0x00, 0x00, 0x00, 0x09, 0x04})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"PW020"`)
}

func TestBodyLimit(t *testing.T) {
	s := New(Options{MaxBody: 8, Gatherer: prometheus.NewRegistry()})
	rec := do(t, s, http.MethodPost, "/v1/inspect", make([]byte, 64))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestServeShutdown(t *testing.T) {
	s := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
