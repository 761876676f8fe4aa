package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/fbgraph/internal/graphtest"
)

func setEnv(t *testing.T, srv *graphtest.Server, extra map[string]string) {
	t.Helper()
	base := map[string]string{
		"GRAPH_BASE_URL":        srv.URL,
		"GRAPH_API_VERSION":     "",
		"MESSENGER_API_VERSION": "",
		"GRAPH_APPSECRET_PROOF": "",
		"METRICS_ENABLED":       "",
		"LOG_LEVEL":             "error",
		"FB_APP_ID":             "",
		"FB_APP_SECRET":         "",
		"FB_ACCESS_TOKEN":       "",
		"FB_PAGE_ACCESS_TOKEN":  "",
	}
	for k, v := range extra {
		base[k] = v
	}
	for k, v := range base {
		t.Setenv(k, v)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand(&stdout, &stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"message=hello=world", " fields =id,name", "empty="})
	require.NoError(t, err)
	assert.Equal(t, "hello=world", params["message"])
	assert.Equal(t, "id,name", params["fields"])
	assert.Equal(t, "", params["empty"])

	_, err = parseParams([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseParams([]string{"=x"})
	assert.Error(t, err)
}

func TestObjectCommandPrintsBody(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()
	srv.Reply(http.MethodGet, "/me", http.StatusOK, map[string]any{"id": "42", "name": "Serg"})
	setEnv(t, srv, map[string]string{"FB_ACCESS_TOKEN": "user-token"})

	out, _, err := execute(t, "object", "me", "-p", "fields=id,name")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"42","name":"Serg"}`, out)

	last, ok := srv.Last()
	require.True(t, ok)
	assert.Equal(t, "user-token", last.Query.Get("access_token"))
	assert.Equal(t, "id,name", last.Query.Get("fields"))
}

func TestPublishUsesVersionOverride(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()
	srv.Reply(http.MethodPost, "/v19.0/me/feed", http.StatusOK, map[string]any{"id": "42_1"})
	setEnv(t, srv, map[string]string{"FB_ACCESS_TOKEN": "user-token"})

	out, _, err := execute(t, "--version-override", "v19.0", "publish", "me", "feed", "-p", "message=hi")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"42_1"}`, out)

	last, _ := srv.Last()
	assert.Equal(t, "hi", last.Query.Get("message"))
}

func TestCommandSurfacesGraphError(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()
	srv.Reply(http.MethodGet, "/me", http.StatusBadRequest, map[string]any{
		"error": map[string]any{"message": "Invalid OAuth access token.", "type": "OAuthException", "code": 190},
	})
	setEnv(t, srv, map[string]string{"FB_ACCESS_TOKEN": "bad"})

	out, _, err := execute(t, "object", "me")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid OAuth access token.")
	assert.Empty(t, out)
}

func TestMissingCredentials(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()
	setEnv(t, srv, nil)

	_, _, err := execute(t, "object", "me")
	assert.EqualError(t, err, "FB_ACCESS_TOKEN is not set")

	_, _, err = execute(t, "app-token")
	assert.EqualError(t, err, "FB_APP_ID and FB_APP_SECRET must be set")

	_, _, err = execute(t, "send-text", "123", "hi")
	assert.EqualError(t, err, "FB_PAGE_ACCESS_TOKEN is not set")
	assert.Empty(t, srv.Requests())
}

func TestAppTokenFromEnvFile(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()
	srv.Reply(http.MethodGet, "/oauth/access_token", http.StatusOK, map[string]any{"access_token": "app|minted", "token_type": "bearer"})
	setEnv(t, srv, nil)

	envFile := filepath.Join(t.TempDir(), "graph.env")
	require.NoError(t, os.WriteFile(envFile, []byte("FB_APP_ID=1234\nFB_APP_SECRET=shh\n"), 0o600))
	// godotenv never overrides variables that are already set, so unset ours.
	require.NoError(t, os.Unsetenv("FB_APP_ID"))
	require.NoError(t, os.Unsetenv("FB_APP_SECRET"))
	t.Cleanup(func() {
		os.Unsetenv("FB_APP_ID")
		os.Unsetenv("FB_APP_SECRET")
	})

	out, _, err := execute(t, "--env-file", envFile, "app-token")
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"app|minted"}`, out)

	last, _ := srv.Last()
	assert.Equal(t, "1234", last.Query.Get("client_id"))
	assert.Equal(t, "client_credentials", last.Query.Get("grant_type"))
}

func TestTestUsersCreateFlags(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()
	srv.Reply(http.MethodGet, "/oauth/access_token", http.StatusOK, map[string]any{"access_token": "app|tok"})
	srv.Reply(http.MethodGet, "/1234/accounts/test-users", http.StatusOK, map[string]any{"id": "100", "access_token": "u"})
	setEnv(t, srv, map[string]string{"FB_APP_ID": "1234", "FB_APP_SECRET": "shh", "FB_TEST_USER_LOCALE": "ru_RU"})

	_, _, err := execute(t, "test-users", "create", "--name", "Serg Ivanov", "--installed=false", "--permissions", "email,public_profile")
	require.NoError(t, err)

	last, _ := srv.Last()
	assert.Equal(t, "Serg Ivanov", last.Query.Get("name"))
	assert.Equal(t, "ru_RU", last.Query.Get("locale"))
	assert.Equal(t, "false", last.Query.Get("installed"))
	assert.Equal(t, "email,public_profile", last.Query.Get("permissions"))
	assert.Equal(t, "post", last.Query.Get("method"))
	assert.Equal(t, "app|tok", last.Query.Get("access_token"))
}

func TestSendTextWithTag(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()
	srv.Reply(http.MethodPost, "/v2.6/me/messages", http.StatusOK, map[string]any{"recipient_id": "123", "message_id": "mid.1"})
	setEnv(t, srv, map[string]string{"FB_PAGE_ACCESS_TOKEN": "page-token"})

	out, _, err := execute(t, "send-text", "123", "your order shipped", "--tag", "shipping_update")
	require.NoError(t, err)
	assert.JSONEq(t, `{"recipient_id":"123","message_id":"mid.1"}`, out)

	last, _ := srv.Last()
	assert.JSONEq(t, `{
		"messaging_type":"MESSAGE_TAG",
		"tag":"SHIPPING_UPDATE",
		"recipient":{"id":"123"},
		"message":{"text":"your order shipped"}
	}`, string(last.Body))
}

func TestMetricsDumpedWhenEnabled(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()
	srv.Reply(http.MethodGet, "/me", http.StatusOK, map[string]any{"id": "42"})
	setEnv(t, srv, map[string]string{"FB_ACCESS_TOKEN": "user-token", "METRICS_ENABLED": "true"})

	_, stderr, err := execute(t, "object", "me")
	require.NoError(t, err)
	assert.Contains(t, stderr, "fbgraph_graph_requests_total")
	assert.Contains(t, stderr, `outcome="ok"`)
}
