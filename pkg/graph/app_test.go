package graph_test

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/fbgraph/internal/graphtest"
	"github.com/wolfman30/fbgraph/pkg/graph"
	"github.com/wolfman30/fbgraph/pkg/logging"
)

const appTokenBody = `{"access_token":"app|token","token_type":"bearer"}`

func newAppAPI(t *testing.T, rec *graphtest.Recorder, obs graph.Observer) *graph.AppAPI {
	t.Helper()
	cfg := graph.Config{Transport: rec, Logger: logging.Discard()}
	if obs != nil {
		cfg.Metrics = obs
	}
	api, err := graph.NewAppAPI("1234", "s3cret", cfg)
	require.NoError(t, err)
	return api
}

func TestNewAppAPIRequiresCredentials(t *testing.T) {
	_, err := graph.NewAppAPI("", "secret", graph.Config{})
	assert.Error(t, err)
	_, err = graph.NewAppAPI("id", " ", graph.Config{})
	assert.Error(t, err)
}

func TestAppAccessTokenMintedOnce(t *testing.T) {
	rec := graphtest.NewRecorder(graphtest.Scripted{Status: http.StatusOK, Body: appTokenBody})
	obs := &recordingObserver{}
	api := newAppAPI(t, rec, obs)
	ctx := context.Background()

	first, err := api.AccessToken(ctx)
	require.NoError(t, err)
	second, err := api.AccessToken(ctx)
	require.NoError(t, err)

	assert.Equal(t, "app|token", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, rec.Calls())
	assert.Equal(t, []bool{true}, obs.mints)

	mint := rec.Request(0)
	assert.Equal(t, http.MethodGet, mint.Method)
	assert.Equal(t, graph.DefaultBaseURL+"/oauth/access_token", mint.URL)
	assert.Equal(t, "client_credentials", mint.Params["grant_type"])
	assert.Equal(t, "1234", mint.Params["client_id"])
	assert.Equal(t, "s3cret", mint.Params["client_secret"])
}

func TestAppAccessTokenConcurrentCallersShareMint(t *testing.T) {
	rec := graphtest.NewRecorder(graphtest.Scripted{Status: http.StatusOK, Body: appTokenBody})
	api := newAppAPI(t, rec, nil)

	var wg sync.WaitGroup
	tokens := make([]string, 16)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := api.AccessToken(context.Background())
			assert.NoError(t, err)
			tokens[i] = tok
		}(i)
	}
	wg.Wait()

	for _, tok := range tokens {
		assert.Equal(t, "app|token", tok)
	}
	assert.Equal(t, 1, rec.Calls())
}

// gatedTransport holds every request until release is closed, honouring
// the request context while it waits.
type gatedTransport struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once

	mu    sync.Mutex
	calls int
}

func newGatedTransport() *gatedTransport {
	return &gatedTransport{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedTransport) Do(ctx context.Context, _ *graph.Request) (*graph.Response, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	g.once.Do(func() { close(g.started) })
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-g.release:
		return &graph.Response{StatusCode: http.StatusOK, Body: []byte(appTokenBody)}, nil
	}
}

func (g *gatedTransport) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestAppAccessTokenSurvivesFirstCallerCancel(t *testing.T) {
	gate := newGatedTransport()
	api, err := graph.NewAppAPI("1234", "s3cret", graph.Config{Transport: gate, Logger: logging.Discard()})
	require.NoError(t, err)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := api.AccessToken(firstCtx)
		firstErr <- err
	}()
	<-gate.started

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	type outcome struct {
		token string
		err   error
	}
	second := make(chan outcome, 1)
	go func() {
		tok, err := api.AccessToken(context.Background())
		second <- outcome{tok, err}
	}()
	close(gate.release)

	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "app|token", got.token)
	assert.Equal(t, 1, gate.Calls())
}

func TestAppAccessTokenMintFailure(t *testing.T) {
	rec := graphtest.NewRecorder(
		graphtest.Scripted{Status: http.StatusBadRequest, Body: `{"error":{"message":"Error validating client secret.","type":"OAuthException","code":1}}`},
		graphtest.Scripted{Status: http.StatusOK, Body: appTokenBody},
	)
	obs := &recordingObserver{}
	api := newAppAPI(t, rec, obs)
	ctx := context.Background()

	_, err := api.AccessToken(ctx)
	require.Error(t, err)
	assert.True(t, graph.IsOAuthError(err))

	tok, err := api.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "app|token", tok)
	assert.Equal(t, []bool{false, true}, obs.mints)
}

func TestAppSetAndResetAccessToken(t *testing.T) {
	rec := graphtest.NewRecorder(graphtest.Scripted{Status: http.StatusOK, Body: appTokenBody})
	api := newAppAPI(t, rec, nil)
	ctx := context.Background()

	api.SetAccessToken("preset")
	tok, err := api.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "preset", tok)
	assert.Equal(t, 0, rec.Calls())

	api.ResetAccessToken()
	tok, err = api.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "app|token", tok)
	assert.Equal(t, 1, rec.Calls())
}

func TestCreateTestUserDefaults(t *testing.T) {
	rec := graphtest.NewRecorder(
		graphtest.Scripted{Status: http.StatusOK, Body: appTokenBody},
		graphtest.Scripted{Status: http.StatusOK, Body: `{"id":"100","access_token":"user","login_url":"https://x"}`},
	)
	api := newAppAPI(t, rec, nil)

	_, err := api.CreateTestUser(context.Background(), graph.TestUserOptions{Name: "Serg Ivanov"}, graph.Params{
		"name":         "ignored",
		"access_token": "spoofed",
	})
	require.NoError(t, err)
	require.Equal(t, 2, rec.Calls())

	req := rec.Request(1)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.True(t, strings.HasSuffix(req.URL, "1234/accounts/test-users"), req.URL)
	assert.Equal(t, "true", req.Params["installed"])
	assert.Equal(t, "Serg Ivanov", req.Params["name"])
	assert.Equal(t, "en_US", req.Params["locale"])
	assert.Equal(t, "post", req.Params["method"])
	assert.Equal(t, "app|token", req.Params["access_token"])
	assert.NotContains(t, req.Params, "permissions")
}

func TestCreateTestUserOptions(t *testing.T) {
	rec := graphtest.NewRecorder(graphtest.Scripted{Status: http.StatusOK, Body: appTokenBody})
	api := newAppAPI(t, rec, nil)
	installed := false

	_, err := api.CreateTestUser(context.Background(), graph.TestUserOptions{
		Installed:   &installed,
		Locale:      "ru_RU",
		Permissions: []string{"email", "user_likes"},
	}, nil)
	require.NoError(t, err)

	req := rec.Request(1)
	assert.Equal(t, "false", req.Params["installed"])
	assert.Equal(t, graph.DefaultTestUserName, req.Params["name"])
	assert.Equal(t, "ru_RU", req.Params["locale"])
	assert.Equal(t, "email,user_likes", req.Params["permissions"])
}

func TestCreateTestUserExtraBeatsDefaults(t *testing.T) {
	rec := graphtest.NewRecorder(graphtest.Scripted{Status: http.StatusOK, Body: appTokenBody})
	api := newAppAPI(t, rec, nil)

	_, err := api.CreateTestUser(context.Background(), graph.TestUserOptions{}, graph.Params{
		"locale":    "de_DE",
		"installed": "false",
		"method":    "get",
	})
	require.NoError(t, err)

	req := rec.Request(1)
	assert.Equal(t, "de_DE", req.Params["locale"])
	assert.Equal(t, "false", req.Params["installed"])
	assert.Equal(t, graph.DefaultTestUserName, req.Params["name"])
	assert.Equal(t, "post", req.Params["method"])
}

func TestAppAnalyticsAndTestUsers(t *testing.T) {
	rec := graphtest.NewRecorder(graphtest.Scripted{Status: http.StatusOK, Body: appTokenBody})
	api := newAppAPI(t, rec, nil)
	ctx := context.Background()

	_, err := api.Analytics(ctx, "", nil)
	require.NoError(t, err)
	_, err = api.Analytics(ctx, "/application_canvas_views/day", graph.Params{"since": "1"})
	require.NoError(t, err)
	_, err = api.TestUsers(ctx, nil)
	require.NoError(t, err)
	_, err = api.DeleteTestUser(ctx, "100")
	require.NoError(t, err)

	assert.Equal(t, graph.DefaultBaseURL+"/1234/insights", rec.Request(1).URL)
	assert.Equal(t, graph.DefaultBaseURL+"/1234/insights/application_canvas_views/day", rec.Request(2).URL)
	assert.Equal(t, "1", rec.Request(2).Params["since"])
	assert.Equal(t, graph.DefaultBaseURL+"/1234/accounts/test-users", rec.Request(3).URL)
	assert.Equal(t, http.MethodDelete, rec.Request(4).Method)
	assert.Equal(t, graph.DefaultBaseURL+"/100", rec.Request(4).URL)
	assert.Equal(t, 5, rec.Calls())
}
