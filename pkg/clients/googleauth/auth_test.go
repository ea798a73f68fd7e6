package googleauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/pibshift/pibshift/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestAuthorizer builds an Authorizer whose token endpoint is tokenURL and
// whose token file lives in a temp dir
func newTestAuthorizer(t *testing.T, tokenURL string) *Authorizer {
	t.Helper()

	dir := t.TempDir()
	clientJSON := `{"installed":{"client_id":"id","client_secret":"secret",` +
		`"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"` + tokenURL + `"}}`
	path := filepath.Join(dir, "oauthClient.json")
	require.NoError(t, os.WriteFile(path, []byte(clientJSON), 0600))

	client, err := config.LoadOAuthClientFromPath(path)
	require.NoError(t, err)

	sheets := config.Default().Sheets
	sheets.TokenDir = filepath.Join(dir, "tokens")

	auth, err := New(client, sheets, "test", zap.NewNop())
	require.NoError(t, err)
	return auth
}

func allScopes() []string {
	return []string{config.ScopeSheets, config.ScopeGmailSend}
}

func TestNew(t *testing.T) {
	auth := newTestAuthorizer(t, "https://oauth2.googleapis.com/token")

	assert.Equal(t, allScopes(), auth.oauth.Scopes)
	assert.Equal(t, "http://localhost:3000/oauth/callback", auth.oauth.RedirectURL)
	assert.Equal(t, "token.test.json", filepath.Base(auth.store.path))
}

func TestMissingScopes(t *testing.T) {
	tests := []struct {
		name     string
		granted  []string
		expected []string
	}{
		{name: "all granted", granted: allScopes(), expected: nil},
		{name: "extra scopes are fine", granted: []string{"openid", config.ScopeGmailSend, config.ScopeSheets}, expected: nil},
		{name: "gmail missing", granted: []string{config.ScopeSheets}, expected: []string{config.ScopeGmailSend}},
		{name: "nothing granted", granted: nil, expected: allScopes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MissingScopes(tt.granted, allScopes()))
		})
	}
}

func TestAuthorizer_Token(t *testing.T) {
	valid := &oauth2.Token{AccessToken: "access", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
	expired := &oauth2.Token{AccessToken: "old", TokenType: "Bearer", Expiry: time.Now().Add(-time.Hour)}

	t.Run("nothing stored", func(t *testing.T) {
		auth := newTestAuthorizer(t, "https://oauth2.googleapis.com/token")

		_, err := auth.Token(context.Background())
		assert.ErrorIs(t, err, ErrNotLoggedIn)
	})

	t.Run("valid stored token", func(t *testing.T) {
		auth := newTestAuthorizer(t, "https://oauth2.googleapis.com/token")
		require.NoError(t, auth.store.save(&storedToken{Token: valid, Scopes: allScopes()}))

		token, err := auth.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "access", token.AccessToken)
	})

	t.Run("stored token lacks a configured scope", func(t *testing.T) {
		auth := newTestAuthorizer(t, "https://oauth2.googleapis.com/token")
		require.NoError(t, auth.store.save(&storedToken{Token: valid, Scopes: []string{config.ScopeSheets}}))

		_, err := auth.Token(context.Background())
		assert.ErrorIs(t, err, ErrNotLoggedIn)
		assert.ErrorContains(t, err, config.ScopeGmailSend)
	})

	t.Run("expired without refresh token", func(t *testing.T) {
		auth := newTestAuthorizer(t, "https://oauth2.googleapis.com/token")
		require.NoError(t, auth.store.save(&storedToken{Token: expired, Scopes: allScopes()}))

		_, err := auth.Token(context.Background())
		assert.ErrorIs(t, err, ErrNotLoggedIn)
	})

	t.Run("expired token is refreshed and saved", func(t *testing.T) {
		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh", r.PostForm.Get("refresh_token"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`))
		}))
		defer tokenServer.Close()

		auth := newTestAuthorizer(t, tokenServer.URL)
		stale := *expired
		stale.RefreshToken = "refresh"
		require.NoError(t, auth.store.save(&storedToken{Token: &stale, Scopes: allScopes()}))

		token, err := auth.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "fresh", token.AccessToken)

		stored, err := auth.store.load()
		require.NoError(t, err)
		assert.Equal(t, "fresh", stored.Token.AccessToken)
		assert.Equal(t, "refresh", stored.Token.RefreshToken, "The refresh token survives a refresh")
		assert.Equal(t, allScopes(), stored.Scopes)
	})
}

func TestAuthorizer_StatusAndLogout(t *testing.T) {
	auth := newTestAuthorizer(t, "https://oauth2.googleapis.com/token")

	status, err := auth.Status()
	require.NoError(t, err)
	assert.False(t, status.LoggedIn)
	assert.Equal(t, auth.store.path, status.TokenPath)

	expiry := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, auth.store.save(&storedToken{
		Token:  &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: expiry},
		Scopes: []string{config.ScopeSheets},
	}))

	status, err = auth.Status()
	require.NoError(t, err)
	assert.True(t, status.LoggedIn)
	assert.True(t, status.Refreshable)
	assert.True(t, expiry.Equal(status.Expiry))
	assert.Equal(t, []string{config.ScopeGmailSend}, status.Missing)

	require.NoError(t, auth.Logout())
	require.NoError(t, auth.Logout(), "Logging out twice is not an error")

	status, err = auth.Status()
	require.NoError(t, err)
	assert.False(t, status.LoggedIn)
}

func TestTokenStore_Permissions(t *testing.T) {
	store := tokenStore{path: filepath.Join(t.TempDir(), "tokens", "token.json")}
	require.NoError(t, store.save(&storedToken{Token: &oauth2.Token{AccessToken: "a"}}))

	info, err := os.Stat(store.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(store.path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

func TestTokenStore_Corrupt(t *testing.T) {
	store := tokenStore{path: filepath.Join(t.TempDir(), "token.json")}
	require.NoError(t, os.WriteFile(store.path, []byte("{not json"), 0600))

	_, err := store.load()
	assert.ErrorContains(t, err, "failed to parse token file")
}

func TestGrantedScopes(t *testing.T) {
	t.Run("from the token response", func(t *testing.T) {
		auth := newTestAuthorizer(t, "https://oauth2.googleapis.com/token")
		auth.tokenInfoURL = "http://127.0.0.1:1/unreachable"
		token := (&oauth2.Token{AccessToken: "a"}).WithExtra(map[string]interface{}{
			"scope": config.ScopeSheets + " " + config.ScopeGmailSend,
		})

		granted, err := auth.grantedScopes(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, allScopes(), granted)
	})

	t.Run("from tokeninfo", func(t *testing.T) {
		infoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "a", r.URL.Query().Get("access_token"))
			w.Write([]byte(`{"scope":"` + config.ScopeSheets + `"}`))
		}))
		defer infoServer.Close()

		auth := newTestAuthorizer(t, "https://oauth2.googleapis.com/token")
		auth.tokenInfoURL = infoServer.URL

		granted, err := auth.grantedScopes(context.Background(), &oauth2.Token{AccessToken: "a"})
		require.NoError(t, err)
		assert.Equal(t, []string{config.ScopeSheets}, granted)
	})

	t.Run("tokeninfo failure", func(t *testing.T) {
		infoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid_token", http.StatusBadRequest)
		}))
		defer infoServer.Close()

		auth := newTestAuthorizer(t, "https://oauth2.googleapis.com/token")
		auth.tokenInfoURL = infoServer.URL

		_, err := auth.grantedScopes(context.Background(), &oauth2.Token{AccessToken: "a"})
		assert.ErrorContains(t, err, "status 400")
	})
}

func TestCallbackRouter(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
		wantErr    string
		delivered  bool
	}{
		{name: "authorized", query: "?state=s1&code=abc", wantStatus: http.StatusOK, wantCode: "abc", delivered: true},
		{name: "denied", query: "?state=s1&error=access_denied", wantStatus: http.StatusForbidden, wantErr: "access_denied", delivered: true},
		{name: "no code", query: "?state=s1", wantStatus: http.StatusBadRequest, wantErr: "no authorization code", delivered: true},
		{name: "wrong state is ignored", query: "?state=other&code=abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(chan callbackResult, 1)
			router := callbackRouter("s1", results)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, callbackPath+tt.query, nil))
			assert.Equal(t, tt.wantStatus, w.Code)

			if !tt.delivered {
				assert.Empty(t, results)
				return
			}
			result := <-results
			assert.Equal(t, tt.wantCode, result.code)
			if tt.wantErr == "" {
				assert.NoError(t, result.err)
			} else {
				assert.ErrorContains(t, result.err, tt.wantErr)
			}
		})
	}
}

func TestAwaitCode_ContextCancelled(t *testing.T) {
	auth := newTestAuthorizer(t, "https://oauth2.googleapis.com/token")
	auth.port = 0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := auth.awaitCode(ctx, "state")
	assert.ErrorIs(t, err, context.Canceled)
}
