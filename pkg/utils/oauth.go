package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sosbx/garde-planner/internal/config"
)

const (
	authPort     = 3000
	authTimeout  = 5 * time.Minute
	callbackPath = "/oauth/callback"
	tokenDirName = ".garde-planner/tokens"
)

// ScopeSheets is the only Google API scope the application uses: writing
// the published planning to a spreadsheet
const ScopeSheets = "https://www.googleapis.com/auth/spreadsheets"

// GetOAuthConfig creates an OAuth2 config from the OAuth client
// configuration, requesting the sheets scope
func GetOAuthConfig(oauthCfg *config.OAuthClientConfig) (*oauth2.Config, error) {
	oauthConfigJSON, err := json.Marshal(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal oauth config: %w", err)
	}

	googleConfig, err := google.ConfigFromJSON(oauthConfigJSON, ScopeSheets)
	if err != nil {
		return nil, fmt.Errorf("failed to create google config: %w", err)
	}

	googleConfig.RedirectURL = fmt.Sprintf("http://localhost:%d%s", authPort, callbackPath)
	return googleConfig, nil
}

// GetTokenWithFlow returns a cached token for the environment, refreshing
// it if expired, or performs the interactive authorization flow and caches
// the result
func GetTokenWithFlow(ctx context.Context, oauthConfig *oauth2.Config, env string) (*oauth2.Token, error) {
	if token, err := loadToken(env); err == nil {
		if token.Valid() {
			return token, nil
		}
		if token.RefreshToken != "" {
			refreshed, err := oauthConfig.TokenSource(ctx, token).Token()
			if err == nil {
				saveToken(env, refreshed)
				return refreshed, nil
			}
		}
	}

	token, err := runAuthorizationFlow(ctx, oauthConfig)
	if err != nil {
		return nil, err
	}

	if err := saveToken(env, token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	return token, nil
}

// runAuthorizationFlow prints the consent URL and waits for the redirect on
// a local callback server
func runAuthorizationFlow(ctx context.Context, oauthConfig *oauth2.Config) (*oauth2.Token, error) {
	state := fmt.Sprintf("state-%d", time.Now().UnixNano())
	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Printf("Open the following URL in your browser to authorize access:\n\n%s\n\n", authURL)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	server := &http.Server{Addr: fmt.Sprintf(":%d", authPort), Handler: mux}
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			errCh <- fmt.Errorf("oauth state mismatch")
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			errCh <- fmt.Errorf("no authorization code in callback")
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this window.")
		codeCh <- code
	})

	go server.ListenAndServe()
	defer server.Close()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-time.After(authTimeout):
		return nil, fmt.Errorf("timed out waiting for authorization")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

func tokenPath(env string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, tokenDirName, env+".json"), nil
}

func loadToken(env string) (*oauth2.Token, error) {
	path, err := tokenPath(env)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func saveToken(env string, token *oauth2.Token) error {
	path, err := tokenPath(env)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
