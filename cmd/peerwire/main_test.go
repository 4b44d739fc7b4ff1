package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/peerwire/internal/config"
	"github.com/vango-dev/peerwire/internal/errors"
)

// writeConfig writes a default peerwire.json into a temp dir and returns
// its path.
func writeConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()
	cfg := config.New()
	if mutate != nil {
		mutate(cfg)
	}
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, cfg.SaveTo(path))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, stderr bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var pe *errors.PeerwireError
	require.True(t, stderrors.As(err, &pe), "not a coded error: %v", err)
	return pe.Code
}

func TestVersionShort(t *testing.T) {
	out, err := run(t, "", "version", "-s")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestVersionLong(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "peerwire dev")
	assert.Contains(t, out, "Go version:")
}

func TestOpsTable(t *testing.T) {
	out, err := run(t, "", "ops", "--wire")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{"NAME", "CODE", "WIRE", "COMPRESSIBLE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"pong", "3", "yes", "no"}, strings.Fields(lines[1]))
	assert.NotContains(t, out, "timeout")
}

func TestOpsJSON(t *testing.T) {
	out, err := run(t, "", "ops", "--json")
	require.NoError(t, err)

	var rows []opRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	byName := map[string]opRow{}
	for _, r := range rows {
		byName[r.Name] = r
	}
	assert.Equal(t, opRow{Name: "put", Code: 13, Wire: true, Compressible: true}, byName["put"])
	assert.False(t, byName["timeout"].Wire)
}

func TestEncodeStdin(t *testing.T) {
	cfg := writeConfig(t, nil)

	out, err := run(t, `{"op": "ping"}`, "encode", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "0000000104\n", out)
}

func TestEncodeRawFile(t *testing.T) {
	cfg := writeConfig(t, nil)
	desc := filepath.Join(t.TempDir(), "pong.json")
	require.NoError(t, os.WriteFile(desc, []byte(`{"op": "pong", "uptimePct": 7}`), 0644))

	out, err := run(t, "", "encode", "--config", cfg, "-f", desc, "--raw")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x02, 0x03, 0x07}, []byte(out))
}

func TestEncodeErrors(t *testing.T) {
	small := writeConfig(t, func(c *config.Config) {
		c.Packer.MaxSize = 5
		c.Packer.InitialCap = 0
	})
	cfg := writeConfig(t, nil)

	tests := []struct {
		name  string
		stdin string
		args  []string
		code  string
	}{
		{"not_compressible", `{"op": "ping"}`, []string{"--config", cfg, "--compressed"}, "PW011"},
		{"capacity", `{"op": "pong", "uptimePct": 1}`, []string{"--config", small}, "PW012"},
		{"unknown_op", `{"op": "gossip"}`, []string{"--config", cfg}, "PW010"},
		{"unknown_field", `{"op": "ping", "extra": 1}`, []string{"--config", cfg}, "PW016"},
		{"missing_file", "", []string{"--config", cfg, "-f", filepath.Join(t.TempDir(), "nope.json")}, "PW041"},
		{"missing_config", `{"op": "ping"}`, []string{"--config", filepath.Join(t.TempDir(), "peerwire.json")}, "PW001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.stdin, append([]string{"encode"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.code, errCode(t, err))
		})
	}
}

func TestInspectHex(t *testing.T) {
	out, err := run(t, "", "inspect", "0x00000002 0307")
	require.NoError(t, err)
	assert.Contains(t, out, "op:           pong (3)")
	assert.Contains(t, out, "flag:         none")
	assert.Contains(t, out, "fields:       1 bytes")
}

func TestInspectCompressedStdin(t *testing.T) {
	cfg := writeConfig(t, nil)
	frameHex, err := run(t, `{"op": "app_gossip", "chainId": "0x`+strings.Repeat("00", 32)+`"}`,
		"encode", "--config", cfg, "--compressed")
	require.NoError(t, err)
	frame, err := hex.DecodeString(strings.TrimSpace(frameHex))
	require.NoError(t, err)

	out, err := run(t, string(frame), "inspect", "-f", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "op:           app_gossip (22)")
	assert.Contains(t, out, "flag:         compressed")
	assert.Contains(t, out, "fields:       36 bytes")
}

func TestInspectErrors(t *testing.T) {
	_, err := run(t, "", "inspect", "zz")
	assert.Equal(t, "PW040", errCode(t, err))

	_, err = run(t, "", "inspect", "0000000904")
	assert.Equal(t, "PW020", errCode(t, err))

	_, err = run(t, "", "inspect", "0000000105")
	assert.Equal(t, "PW010", errCode(t, err))

	_, err = run(t, "", "inspect")
	var pe *errors.PeerwireError
	require.True(t, stderrors.As(err, &pe))
	assert.Equal(t, errors.CategoryCLI, pe.Category)
}

func TestSendWebSocket(t *testing.T) {
	received := make(chan []byte, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, data, err := conn.ReadMessage()
		if err == nil {
			received <- data
		}
	}))
	defer srv.Close()

	cfg := writeConfig(t, nil)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	out, err := run(t, `{"op": "pong", "uptimePct": 99}`, "send", "--config", cfg, "--url", url)
	require.NoError(t, err)
	assert.Equal(t, "sent pong\n", out)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x02, 0x03, 99}, <-received)
}

func TestSendErrors(t *testing.T) {
	cfg := writeConfig(t, nil)

	_, err := run(t, `{"op": "ping"}`, "send", "--config", cfg)
	assert.Equal(t, "PW040", errCode(t, err))

	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	_, err = run(t, `{"op": "ping"}`, "send", "--config", cfg, "--url", url)
	assert.Equal(t, "PW030", errCode(t, err))
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "", "config", "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, config.ConfigFileName)

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, config.New().Packer, cfg.Packer)

	_, err = run(t, "", "config", "init", dir)
	require.Error(t, err)

	_, err = run(t, "", "config", "init", dir, "--force")
	require.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	path := writeConfig(t, func(c *config.Config) { c.Log.Level = "debug" })

	out, err := run(t, "", "config", "show", "--config", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# "+path+"\n"))
	assert.Contains(t, out, `"level": "debug"`)
}
