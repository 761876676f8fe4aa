package graph_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/fbgraph/internal/graphtest"
	"github.com/wolfman30/fbgraph/pkg/graph"
	"github.com/wolfman30/fbgraph/pkg/logging"
)

func newUserAPI(rec *graphtest.Recorder, token string, opts ...graph.UserOption) *graph.UserAPI {
	return graph.NewUserAPI(token, graph.Config{Transport: rec, Logger: logging.Discard()}, opts...)
}

func TestUserAPIBadTokenSurfacesOAuthFault(t *testing.T) {
	rec := graphtest.NewRecorder(graphtest.Scripted{
		Status: http.StatusBadRequest,
		Body:   `{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190}}`,
	})
	api := newUserAPI(rec, "bad")

	_, err := api.GetObject(context.Background(), "me", nil)
	require.Error(t, err)

	fault, ok := graph.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 190, fault.Code)
	assert.True(t, graph.IsOAuthError(err))
	assert.Equal(t, "bad", rec.Request(0).Params["access_token"])
}

func TestUserAPIVerbsAndPaths(t *testing.T) {
	rec := graphtest.NewRecorder()
	api := newUserAPI(rec, "tok")
	ctx := context.Background()

	_, err := api.GetObject(ctx, "817129783203", graph.Params{"fields": "id"})
	require.NoError(t, err)
	_, err = api.GetConnections(ctx, "me", "friends", nil)
	require.NoError(t, err)
	_, err = api.Publish(ctx, "me", "feed", graph.Params{"message": "hello"})
	require.NoError(t, err)
	_, err = api.Delete(ctx, "123_456")
	require.NoError(t, err)

	cases := []struct {
		method string
		suffix string
	}{
		{http.MethodGet, "/817129783203"},
		{http.MethodGet, "/me/friends"},
		{http.MethodPost, "/me/feed"},
		{http.MethodDelete, "/123_456"},
	}
	require.Equal(t, len(cases), rec.Calls())
	for i, tc := range cases {
		req := rec.Request(i)
		assert.Equal(t, tc.method, req.Method, "call %d", i)
		assert.Equal(t, graph.DefaultBaseURL+tc.suffix, req.URL, "call %d", i)
		assert.Equal(t, "tok", req.Params["access_token"])
	}
	assert.Equal(t, "hello", rec.Request(2).Params["message"])
	assert.Nil(t, rec.Request(3).JSON)
}

func TestUserAPIRejectsEmptySegments(t *testing.T) {
	rec := graphtest.NewRecorder()
	api := newUserAPI(rec, "tok")
	ctx := context.Background()

	_, err := api.GetObject(ctx, " ", nil)
	assert.Error(t, err)
	_, err = api.GetConnections(ctx, "me", "/", nil)
	assert.Error(t, err)
	_, err = api.Search(ctx, "", "page", nil)
	assert.Error(t, err)
	_, err = api.FQL(ctx, "")
	assert.Error(t, err)
	assert.Equal(t, 0, rec.Calls())
}

func TestUserAPIPictureSearchFQL(t *testing.T) {
	rec := graphtest.NewRecorder()
	api := newUserAPI(rec, "tok")
	ctx := context.Background()

	_, err := api.GetPicture(ctx, "0xKirill", graph.Params{"type": "large"})
	require.NoError(t, err)
	_, err = api.Search(ctx, "coffee", "place", nil)
	require.NoError(t, err)
	_, err = api.FQL(ctx, "SELECT uid FROM user WHERE uid=me()")
	require.NoError(t, err)
	_, err = api.GetPicture(ctx, "0xKirill", graph.Params{"redirect": "true"})
	require.NoError(t, err)

	pic := rec.Request(0)
	assert.Equal(t, graph.DefaultBaseURL+"/0xKirill/picture", pic.URL)
	assert.Equal(t, "false", pic.Params["redirect"])
	assert.Equal(t, "large", pic.Params["type"])

	search := rec.Request(1)
	assert.Equal(t, graph.DefaultBaseURL+"/search", search.URL)
	assert.Equal(t, "coffee", search.Params["q"])
	assert.Equal(t, "place", search.Params["type"])

	fql := rec.Request(2)
	assert.Equal(t, graph.DefaultBaseURL+"/fql", fql.URL)
	assert.Equal(t, "SELECT uid FROM user WHERE uid=me()", fql.Params["q"])

	followed := rec.Request(3)
	assert.Equal(t, "true", followed.Params["redirect"])
	assert.Equal(t, "tok", followed.Params["access_token"])
}

func TestUserAPIAppSecretProof(t *testing.T) {
	rec := graphtest.NewRecorder()
	api := newUserAPI(rec, "tok", graph.WithAppSecretProof("secret"))

	_, err := api.GetObject(context.Background(), "me", graph.Params{"appsecret_proof": "forged"})
	require.NoError(t, err)

	proof := rec.Request(0).Params["appsecret_proof"]
	assert.Equal(t, graph.AppSecretProof("tok", "secret"), proof)
	assert.Len(t, proof, 64)
	assert.NotEqual(t, graph.AppSecretProof("tok", "other"), proof)
}

func TestUserAPIExtendAccessToken(t *testing.T) {
	rec := graphtest.NewRecorder(
		graphtest.Scripted{Status: http.StatusOK, Body: `{"access_token":"long-lived","token_type":"bearer","expires_in":5183944}`},
		graphtest.Scripted{Status: http.StatusOK, Body: `{"id":"1"}`},
	)
	api := newUserAPI(rec, "short")
	ctx := context.Background()

	token, err := api.ExtendAccessToken(ctx, "app", "secret")
	require.NoError(t, err)
	assert.Equal(t, "long-lived", token)
	assert.Equal(t, "long-lived", api.AccessToken())

	exchange := rec.Request(0)
	assert.Equal(t, graph.DefaultBaseURL+"/oauth/access_token", exchange.URL)
	assert.Equal(t, "fb_exchange_token", exchange.Params["grant_type"])
	assert.Equal(t, "short", exchange.Params["fb_exchange_token"])
	assert.Equal(t, "app", exchange.Params["client_id"])

	_, err = api.GetObject(ctx, "me", nil)
	require.NoError(t, err)
	assert.Equal(t, "long-lived", rec.Request(1).Params["access_token"])

	_, err = api.ExtendAccessToken(ctx, "", "secret")
	assert.Error(t, err)
}

func TestUserAPIAgainstServer(t *testing.T) {
	srv := graphtest.NewServer()
	defer srv.Close()
	srv.Reply(http.MethodGet, "/me", http.StatusOK, map[string]any{"id": "42", "name": "Serg"})
	srv.Reply(http.MethodDelete, "/{id}", http.StatusOK, `true`)

	api := graph.NewUserAPI("tok", graph.Config{BaseURL: srv.URL, HTTPClient: srv.Client(), Logger: logging.Discard()})
	ctx := context.Background()

	res, err := api.GetObject(ctx, "me", nil)
	require.NoError(t, err)
	obj, err := res.Object()
	require.NoError(t, err)
	assert.Equal(t, "Serg", obj["name"])

	res, err = api.Delete(ctx, "99")
	require.NoError(t, err)
	ok, err := res.Bool()
	require.NoError(t, err)
	assert.True(t, ok)

	last, _ := srv.Last()
	assert.Equal(t, http.MethodDelete, last.Method)
	assert.Empty(t, last.Body)
}
