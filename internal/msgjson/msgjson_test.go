package msgjson

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/peerwire/pkg/ids"
	"github.com/vango-dev/peerwire/pkg/message"
)

func tailID(b byte) ids.ID {
	var id ids.ID
	id[30], id[31] = b, b
	return id
}

func TestParseGet(t *testing.T) {
	container := tailID(0x01)
	src := fmt.Sprintf(`{"op": "get", "chainId": %q, "requestId": 7, "deadline": "10s", "containerId": %q}`,
		ids.Empty.String(), container.Hex())

	m, err := Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, message.Get{
		ChainID:     ids.Empty,
		RequestID:   7,
		Deadline:    10 * time.Second,
		ContainerID: container,
	}, m)
}

func TestParseMatchesReferenceFrame(t *testing.T) {
	src := `{"op": "get_accepted_frontier", "chainId": "` + ids.Empty.Hex() + `", "requestId": 7, "deadline": 10000000000}`

	m, err := Parse([]byte(src))
	require.NoError(t, err)

	frame, err := message.Encode(m, message.Plain)
	require.NoError(t, err)

	want := append([]byte{0x00, 0x00, 0x00, 0x2d, 0x06}, make([]byte, 32)...)
	want = append(want, 0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0x00, 0x02, 0x54, 0x0b, 0xe4, 0x00)
	assert.Equal(t, want, frame)
}

func TestParseEveryWireOp(t *testing.T) {
	id := tailID(0x02).String()
	for _, op := range message.Ops() {
		if op.IsInternal() {
			continue
		}
		t.Run(op.String(), func(t *testing.T) {
			src := fmt.Sprintf(`{
				"op": %q, "chainId": %q, "requestId": 1, "deadline": "1s",
				"containerId": %q, "containerIds": [%q], "containers": ["AQI="],
				"container": "AQI=", "appBytes": "AQI=", "summary": "AQI=",
				"heights": [16], "summaryIds": [%q], "uptimePct": 50,
				"networkId": 1, "myTime": 2, "ip": "127.0.0.1:9651",
				"myVersion": "avalanche/1.7.3", "myVersionTime": 3, "sig": "AQI=",
				"trackedSubnets": [%q],
				"peers": [{"cert": "AQI=", "ip": "[::1]:9651", "time": 4, "sig": "AQI="}]
			}`, op, id, id, id, id, id)

			m, err := Parse([]byte(src))
			require.NoError(t, err)
			assert.Equal(t, op, m.Op())

			_, err = message.Encode(m, message.Plain)
			assert.NoError(t, err)
		})
	}
}

func TestParsePeerList(t *testing.T) {
	src := `{"op": "peerlist", "bypassThrottling": true, "peers": [
		{"cert": "AQID", "ip": "127.0.0.1:8080", "time": 7, "sig": "AQIDBA=="}
	]}`

	m, err := Parse([]byte(src))
	require.NoError(t, err)

	pl, ok := m.(message.PeerList)
	require.True(t, ok)
	assert.True(t, pl.BypassThrottling)
	require.Len(t, pl.Peers, 1)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, pl.Peers[0].Certificate)
	assert.Equal(t, netip.MustParseAddrPort("127.0.0.1:8080"), pl.Peers[0].IP)
	assert.Equal(t, uint64(7), pl.Peers[0].Timestamp)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, pl.Peers[0].Signature)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{"missing_op", `{"requestId": 1}`, ErrMissingOp},
		{"unknown_op", `{"op": "gossip"}`, message.ErrUnknownOp},
		{"internal_op", `{"op": "timeout"}`, ErrNotWireOp},
		{"unknown_field", `{"op": "ping", "nonce": 1}`, ErrInvalidField},
		{"bad_json", `{"op": `, ErrInvalidField},
		{"bad_id", `{"op": "get", "chainId": "0x1234"}`, ErrInvalidField},
		{"bad_deadline", `{"op": "get", "deadline": "soon"}`, ErrInvalidField},
		{"bad_ip", `{"op": "version", "ip": "localhost"}`, ErrInvalidField},
		{"bad_peer_ip", `{"op": "peerlist", "peers": [{"ip": "1.2.3.4"}]}`, ErrInvalidField},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Parse([]byte(tc.src))
			assert.Nil(t, m)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestDecodeStream(t *testing.T) {
	m, err := Decode(strings.NewReader(`{"op": "pong", "uptimePct": 99}` + "\n"))
	require.NoError(t, err)
	assert.Equal(t, message.Pong{UptimePct: 99}, m)
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, time.Duration(d))

	require.NoError(t, json.Unmarshal([]byte(`1500`), &d))
	assert.Equal(t, 1500*time.Nanosecond, time.Duration(d))

	out, err := json.Marshal(Duration(2 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(out))
}
