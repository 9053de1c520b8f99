package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ttsbridge/internal/host"
	"ttsbridge/internal/microservices/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newApp(t *testing.T) *host.App {
	t.Helper()
	app := host.New(16, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go app.Run(ctx)
	t.Cleanup(func() {
		cancel()
		app.Close()
	})

	app.Register("echo", func(_ context.Context, raw json.RawMessage) (any, error) {
		var args struct {
			Text string `json:"text"`
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("%w: %w", host.ErrInvalidArgs, err)
			}
		}
		return args.Text, nil
	})
	app.Register("fail", func(context.Context, json.RawMessage) (any, error) {
		return nil, errors.New("tts engine unreachable")
	})
	return app
}

func invoke(t *testing.T, router http.Handler, command, body string) (*httptest.ResponseRecorder, InvokeResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/invoke/"+command, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp InvokeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestInvoke(t *testing.T) {
	router := NewRouter(newApp(t), websocket.NewHub(nil), nil)

	tests := []struct {
		name       string
		command    string
		body       string
		wantStatus int
		wantOK     bool
		wantResult any
		wantError  string
	}{
		{"success", "echo", `{"text":"hi"}`, http.StatusOK, true, "hi", ""},
		{"empty body", "echo", "", http.StatusOK, true, "", ""},
		{"command failure", "fail", "", http.StatusOK, false, nil, "tts engine unreachable"},
		{"unknown command", "nope", "", http.StatusNotFound, false, nil, "unknown command: nope"},
		{"malformed json", "echo", `{"text":`, http.StatusBadRequest, false, nil, "arguments must be a JSON object"},
		{"wrong arg type", "echo", `{"text":5}`, http.StatusBadRequest, false, nil, "invalid command arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := invoke(t, router, tt.command, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOK, resp.OK)
			assert.Equal(t, tt.wantResult, resp.Result)
			assert.Contains(t, resp.Error, tt.wantError)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestInvoke_ArgsTooLarge(t *testing.T) {
	router := NewRouter(newApp(t), websocket.NewHub(nil), nil)
	body := `{"text":"` + strings.Repeat("a", MaxArgsSize) + `"}`

	w, resp := invoke(t, router, "echo", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.False(t, resp.OK)
}

func TestListCommands(t *testing.T) {
	router := NewRouter(newApp(t), websocket.NewHub(nil), nil)
	req := httptest.NewRequest(http.MethodGet, "/commands", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"commands":["echo","fail"]}`, w.Body.String())
}

func TestServer_ForwardsHostEvents(t *testing.T) {
	app := newApp(t)
	srv := NewServer("127.0.0.1:0", app, nil)
	require.NoError(t, srv.Start())
	defer srv.Shutdown(context.Background())

	url := fmt.Sprintf("ws://%s/events", srv.Addr().String())
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return srv.Hub().ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	app.Emit("tts-message", `{"messageID":7}`)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg websocket.EventMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "tts-message", msg.Event)
	assert.Equal(t, `{"messageID":7}`, msg.Payload)
	assert.WithinDuration(t, time.Now(), msg.Timestamp, 5*time.Second)
}

func TestServer_ShutdownClosesSubscribers(t *testing.T) {
	app := newApp(t)
	srv := NewServer("127.0.0.1:0", app, nil)
	require.NoError(t, srv.Start())

	url := fmt.Sprintf("ws://%s/events", srv.Addr().String())
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return srv.Hub().ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)

	// events after shutdown go nowhere and must not block the host
	app.Emit("tts-message", "late")
}

func TestServer_BindFailure(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	srv := NewServer(taken.Addr().String(), newApp(t), nil)
	err = srv.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start host IPC")
	assert.Nil(t, srv.Addr())
	assert.NoError(t, srv.Shutdown(context.Background()))
}
