package oauth2client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultRevokeTimeout = 10 * time.Second
	maxRevokeBodyBytes   = 1 << 16
)

// revoke calls the RFC 7009 revocation endpoint. The refresh token is
// preferred since revoking it invalidates the whole grant.
func (c *Client) revoke(ctx context.Context, session *Session) error {
	revocationURL := strings.TrimSpace(c.cfg.Endpoint.RevocationURL)
	if revocationURL == "" || session == nil {
		return nil
	}
	token, hint := session.refreshToken, "refresh_token"
	if token == "" {
		token, hint = session.accessToken, "access_token"
	}
	if token == "" {
		return nil
	}

	values := url.Values{}
	values.Set("token", token)
	values.Set("token_type_hint", hint)
	values.Set("client_id", c.cfg.ClientID)

	requestCtx, cancel := context.WithTimeout(ctx, defaultRevokeTimeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(requestCtx, http.MethodPost, revocationURL, strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.ClientSecret != "" {
		httpReq.SetBasicAuth(url.QueryEscape(c.cfg.ClientID), url.QueryEscape(c.cfg.ClientSecret))
	}

	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	response, err := httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("oauth2client: revocation request failed: %w", err)
	}
	defer response.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(response.Body, maxRevokeBodyBytes))
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("oauth2client: revocation endpoint error (%d): %s", response.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
