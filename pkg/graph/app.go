package graph

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Test user defaults applied by CreateTestUser.
const (
	DefaultTestUserName   = "John Smith"
	DefaultTestUserLocale = "en_US"
)

// AppAPI exposes app-scoped verbs authenticated with an app access token
// minted from the app id and secret on first use.
type AppAPI struct {
	appID      string
	appSecret  string
	dispatcher *Dispatcher
	observer   Observer

	mu          sync.RWMutex
	accessToken string
	mint        singleflight.Group
}

// NewAppAPI creates a façade for the app credential pair.
func NewAppAPI(appID, appSecret string, cfg Config) (*AppAPI, error) {
	if strings.TrimSpace(appID) == "" || strings.TrimSpace(appSecret) == "" {
		return nil, errors.New("graph: app id and app secret are required")
	}
	return &AppAPI{
		appID:      appID,
		appSecret:  appSecret,
		dispatcher: NewDispatcher(cfg),
		observer:   cfg.Metrics,
	}, nil
}

// AppID returns the app identifier.
func (a *AppAPI) AppID() string { return a.appID }

// AccessToken returns the cached app token, minting one if none is cached.
// Concurrent callers share a single in-flight mint.
func (a *AppAPI) AccessToken(ctx context.Context) (string, error) {
	if token := a.cachedToken(); token != "" {
		return token, nil
	}
	// The shared mint outlives any single caller; each caller stops waiting
	// on its own context.
	ch := a.mint.DoChan("app_access_token", func() (any, error) {
		if token := a.cachedToken(); token != "" {
			return token, nil
		}
		return a.mintToken(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// SetAccessToken replaces the cached token, e.g. with one issued elsewhere.
func (a *AppAPI) SetAccessToken(token string) {
	a.mu.Lock()
	a.accessToken = token
	a.mu.Unlock()
}

// ResetAccessToken drops the cached token so the next call mints again.
func (a *AppAPI) ResetAccessToken() { a.SetAccessToken("") }

func (a *AppAPI) cachedToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.accessToken
}

func (a *AppAPI) mintToken(ctx context.Context) (string, error) {
	res, err := a.dispatcher.Call(ctx, Call{
		Method: http.MethodGet,
		Path:   "oauth/access_token",
		Auth: Params{
			"client_id":     a.appID,
			"client_secret": a.appSecret,
			"grant_type":    "client_credentials",
		},
	})
	if err == nil {
		var token string
		if token, err = decodeToken(res); err == nil {
			a.observeMint(true)
			a.SetAccessToken(token)
			return token, nil
		}
	}
	a.observeMint(false)
	return "", err
}

func (a *AppAPI) observeMint(ok bool) {
	if a.observer != nil {
		a.observer.ObserveTokenMint(ok)
	}
}

func (a *AppAPI) call(ctx context.Context, method, path string, extra Params) (*Result, error) {
	token, err := a.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return a.dispatcher.Call(ctx, Call{
		Method: method,
		Path:   path,
		Auth:   Params{"access_token": token},
		Extra:  extra,
	})
}

// Analytics reads app insights, optionally narrowed to one metric such as
// "application_canvas_views/day".
func (a *AppAPI) Analytics(ctx context.Context, metric string, extra Params) (*Result, error) {
	path := a.appID + "/insights"
	if metric = strings.Trim(metric, "/"); metric != "" {
		path += "/" + metric
	}
	return a.call(ctx, http.MethodGet, path, extra)
}

// TestUsers lists the test users attached to the app.
func (a *AppAPI) TestUsers(ctx context.Context, extra Params) (*Result, error) {
	return a.call(ctx, http.MethodGet, a.appID+"/accounts/test-users", extra)
}

// TestUserOptions are the modelled fields of a test user creation.
// Zero values take the API defaults.
type TestUserOptions struct {
	Installed   *bool
	Name        string
	Locale      string
	Permissions []string
}

// CreateTestUser creates a test user. The API accepts creation through GET
// with method=post, and that is what is sent. Options that are set override
// extra parameters of the same key; defaults only fill keys extra leaves out.
func (a *AppAPI) CreateTestUser(ctx context.Context, opts TestUserOptions, extra Params) (*Result, error) {
	defaults := Params{
		"installed": "true",
		"name":      DefaultTestUserName,
		"locale":    DefaultTestUserLocale,
	}
	set := Params{"method": "post"}
	if opts.Installed != nil {
		set["installed"] = strconv.FormatBool(*opts.Installed)
	}
	if opts.Name != "" {
		set["name"] = opts.Name
	}
	if opts.Locale != "" {
		set["locale"] = opts.Locale
	}
	if len(opts.Permissions) > 0 {
		set["permissions"] = strings.Join(opts.Permissions, ",")
	}
	return a.call(ctx, http.MethodGet, a.appID+"/accounts/test-users", Merge(defaults, extra, set))
}

// DeleteTestUser removes a test user using the app token.
func (a *AppAPI) DeleteTestUser(ctx context.Context, userID string) (*Result, error) {
	if err := requireSegment("test user id", userID); err != nil {
		return nil, err
	}
	return a.call(ctx, http.MethodDelete, userID, nil)
}
