package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWebhook records the last webhook body and answers with replies
func fakeWebhook(t *testing.T, replies []Reply) (*httptest.Server, *map[string]Query) {
	t.Helper()
	var got map[string]Query

	mux := http.NewServeMux()
	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(SendResult{Replies: replies})
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &got
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHealthText(t *testing.T) {
	srv, _ := fakeWebhook(t, nil)

	out, err := execute(t, "--server", srv.URL, "health")
	require.NoError(t, err)
	assert.Equal(t, "Status: ok\n", out)
}

func TestSendDirectMessage(t *testing.T) {
	srv, got := fakeWebhook(t, []Reply{{Message: "مرحبا"}})

	out, err := execute(t, "--server", srv.URL, "send", "--sender", "a@c.us", "-m", "hi")
	require.NoError(t, err)
	assert.Equal(t, "مرحبا\n", out)

	q := (*got)["query"]
	assert.Equal(t, "a@c.us", q.Sender)
	assert.Equal(t, "hi", q.Message)
	assert.False(t, q.IsGroup)
	assert.Empty(t, q.GroupParticipant)
}

func TestSendGroupMessage(t *testing.T) {
	srv, got := fakeWebhook(t, nil)

	out, err := execute(t, "--server", srv.URL, "send",
		"--sender", "a@c.us", "-m", "hi", "--group", "Divala Kingdom", "--participant", "Ali")
	require.NoError(t, err)
	assert.Equal(t, "(no reply)\n", out)

	q := (*got)["query"]
	assert.True(t, q.IsGroup)
	assert.Equal(t, "Ali to Divala Kingdom", q.GroupParticipant)
}

func TestSendJSONOutput(t *testing.T) {
	srv, _ := fakeWebhook(t, []Reply{{Message: "ok"}})

	out, err := execute(t, "--server", srv.URL, "--output", "json", "send", "--sender", "a", "-m", "x")
	require.NoError(t, err)

	var result SendResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, []Reply{{Message: "ok"}}, result.Replies)
}

func TestSendValidation(t *testing.T) {
	srv, _ := fakeWebhook(t, nil)

	_, err := execute(t, "--server", srv.URL, "send", "-m", "hi")
	assert.ErrorContains(t, err, "--sender")

	_, err = execute(t, "--server", srv.URL, "send", "--sender", "a", "--participant", "Ali")
	assert.ErrorContains(t, err, "--group")
}

func TestServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"replies":[]}`))
	}))
	t.Cleanup(srv.Close)

	_, err := execute(t, "--server", srv.URL, "send", "--sender", "a", "-m", "x")
	assert.ErrorContains(t, err, "HTTP 500")
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	NewOutput("json", &buf).PrintError(assert.AnError)
	assert.JSONEq(t, `{"error":{"message":"`+assert.AnError.Error()+`"}}`, buf.String())

	buf.Reset()
	NewOutput("text", &buf).PrintError(assert.AnError)
	assert.Equal(t, "Error: "+assert.AnError.Error()+"\n", buf.String())
}
