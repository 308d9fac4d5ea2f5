package oauth2client

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"time"

	"github.com/goliatone/go-authprovider/core"
	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/oauth2"
)

type callbackResult struct {
	code string
	err  error
}

// interactiveLogin runs the authorization code flow with PKCE (S256). The
// redirect lands on a loopback server that lives for one login.
func (c *Client) interactiveLogin(ctx context.Context, owner core.UIOwner, generation uint64) (*Session, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", c.cfg.CallbackPort))
	if err != nil {
		return nil, clientError(ErrorCallbackServerFailed, "oauth2client: listen for callback", err, map[string]any{"port": c.cfg.CallbackPort})
	}
	port := listener.Addr().(*net.TCPAddr).Port
	redirectURL := fmt.Sprintf("http://127.0.0.1:%d%s", port, c.cfg.RedirectPath)
	oauthCfg := c.cfg.oauth2Config(redirectURL)

	state, err := randomState()
	if err != nil {
		_ = listener.Close()
		return nil, clientError(ErrorCallbackServerFailed, "oauth2client: generate state", err, nil)
	}
	verifier := oauth2.GenerateVerifier()

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(c.cfg.RedirectPath, handleCallback(state, results))
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			deliver(results, callbackResult{err: clientError(ErrorCallbackServerFailed, "oauth2client: callback server stopped", serveErr, nil)})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			c.logger.Warn("failed to shut down callback server", "error", shutdownErr.Error())
		}
	}()

	authURL := oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
	c.logger.Debug("opening authorization url", "redirect_url", redirectURL)
	c.open(owner, authURL)

	var result callbackResult
	select {
	case result = <-results:
	case <-ctx.Done():
		return nil, clientError(ErrorLoginCancelled, "oauth2client: login did not complete", ctx.Err(), nil)
	}
	if result.err != nil {
		return nil, result.err
	}

	token, err := oauthCfg.Exchange(ctx, result.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, clientError(ErrorTokenExchangeFailed, "oauth2client: exchange authorization code", err, nil)
	}
	session := c.sessionFromToken(token, nil)
	if err := c.commit(ctx, session, nil, generation); err != nil {
		return nil, err
	}
	return session, nil
}

// open runs the URL opener on the owner's UI thread when there is one. An
// opener failure is logged; the user can still paste the URL.
func (c *Client) open(owner core.UIOwner, authURL string) {
	openFn := func() {
		if err := c.openURL(authURL); err != nil {
			c.logger.Warn("failed to open browser, open the url manually", "url", authURL, "error", err.Error())
		}
	}
	if owner == nil {
		openFn()
		return
	}
	owner.RunOnUIThread(openFn)
}

func handleCallback(state string, results chan<- callbackResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if errParam := query.Get("error"); errParam != "" {
			err := clientError(ErrorAuthorizationDenied,
				fmt.Sprintf("oauth2client: authorization failed: %s", errParam), nil,
				map[string]any{"error": errParam, "error_description": query.Get("error_description")},
			)
			writeErrorPage(w, err)
			deliver(results, callbackResult{err: err})
			return
		}
		if query.Get("state") != state {
			err := clientError(ErrorStateMismatch, "oauth2client: callback state mismatch", nil, nil)
			writeErrorPage(w, err)
			deliver(results, callbackResult{err: err})
			return
		}
		code := query.Get("code")
		if code == "" {
			err := clientError(ErrorAuthorizationDenied, "oauth2client: callback missing authorization code", nil, nil)
			writeErrorPage(w, err)
			deliver(results, callbackResult{err: err})
			return
		}
		writeSuccessPage(w)
		deliver(results, callbackResult{code: code})
	}
}

// deliver keeps the first callback result; later ones are dropped.
func deliver(results chan<- callbackResult, result callbackResult) {
	select {
	case results <- result:
	default:
	}
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
}

func writeSuccessPage(w http.ResponseWriter) {
	setSecurityHeaders(w)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Signed in</title></head>
<body><p>Sign-in complete. You can close this window.</p></body></html>`))
}

func writeErrorPage(w http.ResponseWriter, err error) {
	setSecurityHeaders(w)
	w.WriteHeader(http.StatusBadRequest)
	message := err.Error()
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		message = richErr.Message
	}
	_, _ = fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Sign-in failed</title></head>
<body><p>%s</p></body></html>`, html.EscapeString(message))
}
