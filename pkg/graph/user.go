package graph

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// UserAPI exposes Graph verbs authenticated with a user or page token.
type UserAPI struct {
	dispatcher  *Dispatcher
	proofSecret string

	mu          sync.RWMutex
	accessToken string
}

// UserOption customises a UserAPI.
type UserOption func(*UserAPI)

// WithAppSecretProof signs every call with appsecret_proof derived from the
// token and the app secret.
func WithAppSecretProof(appSecret string) UserOption {
	return func(u *UserAPI) { u.proofSecret = appSecret }
}

// NewUserAPI creates a façade bound to accessToken.
func NewUserAPI(accessToken string, cfg Config, opts ...UserOption) *UserAPI {
	u := &UserAPI{
		dispatcher:  NewDispatcher(cfg),
		accessToken: accessToken,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// AccessToken returns the token currently attached to calls.
func (u *UserAPI) AccessToken() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.accessToken
}

func (u *UserAPI) auth() Params {
	token := u.AccessToken()
	p := Params{"access_token": token}
	if u.proofSecret != "" {
		p["appsecret_proof"] = AppSecretProof(token, u.proofSecret)
	}
	return p
}

func (u *UserAPI) call(ctx context.Context, method, path string, extra Params) (*Result, error) {
	return u.dispatcher.Call(ctx, Call{
		Method: method,
		Path:   path,
		Auth:   u.auth(),
		Extra:  extra,
	})
}

// GetObject reads a node, e.g. "me", "817129783203" or "0xKirill/picture".
func (u *UserAPI) GetObject(ctx context.Context, objectID string, extra Params) (*Result, error) {
	if err := requireSegment("object id", objectID); err != nil {
		return nil, err
	}
	return u.call(ctx, http.MethodGet, objectID, extra)
}

// GetConnections reads an edge such as friends, likes or permissions.
func (u *UserAPI) GetConnections(ctx context.Context, objectID, connection string, extra Params) (*Result, error) {
	if err := requireSegment("object id", objectID); err != nil {
		return nil, err
	}
	if err := requireSegment("connection", connection); err != nil {
		return nil, err
	}
	return u.call(ctx, http.MethodGet, objectID+"/"+connection, extra)
}

// Publish posts to an edge such as feed, comments or likes.
func (u *UserAPI) Publish(ctx context.Context, objectID, connection string, extra Params) (*Result, error) {
	if err := requireSegment("object id", objectID); err != nil {
		return nil, err
	}
	if err := requireSegment("connection", connection); err != nil {
		return nil, err
	}
	return u.call(ctx, http.MethodPost, objectID+"/"+connection, extra)
}

// Delete removes a node. It always issues DELETE with no body.
func (u *UserAPI) Delete(ctx context.Context, objectID string) (*Result, error) {
	if err := requireSegment("object id", objectID); err != nil {
		return nil, err
	}
	return u.call(ctx, http.MethodDelete, objectID, nil)
}

// GetPicture returns the picture metadata of a node. It asks for redirect=false
// unless extra says otherwise.
func (u *UserAPI) GetPicture(ctx context.Context, objectID string, extra Params) (*Result, error) {
	if err := requireSegment("object id", objectID); err != nil {
		return nil, err
	}
	return u.call(ctx, http.MethodGet, objectID+"/picture", Merge(Params{"redirect": "false"}, extra))
}

// Search queries the search edge for objects of the given type.
func (u *UserAPI) Search(ctx context.Context, query, objectType string, extra Params) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("graph: search query required")
	}
	params := Params{"q": query}
	if objectType != "" {
		params["type"] = objectType
	}
	return u.call(ctx, http.MethodGet, "search", Merge(extra, params))
}

// FQL runs a legacy FQL query.
func (u *UserAPI) FQL(ctx context.Context, query string) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("graph: fql query required")
	}
	return u.call(ctx, http.MethodGet, "fql", Params{"q": query})
}

// ExtendAccessToken exchanges the current token for a long-lived one and
// uses the new token for subsequent calls.
func (u *UserAPI) ExtendAccessToken(ctx context.Context, appID, appSecret string) (string, error) {
	if appID == "" || appSecret == "" {
		return "", errors.New("graph: app id and secret required to extend token")
	}
	res, err := u.dispatcher.Call(ctx, Call{
		Method: http.MethodGet,
		Path:   "oauth/access_token",
		Auth: Params{
			"client_id":         appID,
			"client_secret":     appSecret,
			"grant_type":        "fb_exchange_token",
			"fb_exchange_token": u.AccessToken(),
		},
	})
	if err != nil {
		return "", err
	}
	token, err := decodeToken(res)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	u.accessToken = token
	u.mu.Unlock()
	return token, nil
}

// AppSecretProof is hex(HMAC-SHA256(appSecret, accessToken)).
func AppSecretProof(accessToken, appSecret string) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(accessToken))
	return hex.EncodeToString(mac.Sum(nil))
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func decodeToken(res *Result) (string, error) {
	var tok tokenResponse
	if err := res.Decode(&tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", errors.New("graph: token endpoint returned no access_token")
	}
	return tok.AccessToken, nil
}

func requireSegment(name, value string) error {
	if strings.Trim(strings.TrimSpace(value), "/") == "" {
		return fmt.Errorf("graph: %s required", name)
	}
	return nil
}
