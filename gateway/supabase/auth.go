package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/roadmapapp/go-auth-client/gateway"
	errs "github.com/roadmapapp/go-auth-client/internal/errors"
	"github.com/roadmapapp/go-auth-client/session"
)

// tokenResponse is GoTrue's token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID string `json:"id"`
	} `json:"user"`
}

// SignIn authenticates with the password grant. Backend rejections map to
// invalid credentials; transport failures map to network errors.
func (c *Client) SignIn(ctx context.Context, email, password string) (session.Session, error) {
	body := map[string]string{"email": email, "password": password}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", body, "")
	if err != nil {
		return session.Session{}, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return session.Session{}, errs.Wrapf(errs.ErrNetwork, "[Client.SignIn] %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusUnprocessableEntity:
		return session.Session{}, errs.Wrapf(errs.ErrInvalidCredentials, "[Client.SignIn] auth rejected with status %d", resp.StatusCode)
	default:
		return session.Session{}, errs.Wrapf(errs.ErrNetwork, "[Client.SignIn] unexpected status %d", resp.StatusCode)
	}

	sess, err := c.sessionFromResponse(resp)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "[Client.SignIn]")
	}

	c.setCurrent(&sess)
	c.emit(gateway.Event{Kind: gateway.EventSignedIn, Session: &sess})
	return sess, nil
}

// SignOut revokes the current session with the backend. Without an active
// session it is a no-op.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	current := c.currentLocked()
	c.mu.Unlock()

	if current != nil {
		req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/logout", nil, current.AccessToken)
		if err != nil {
			return err
		}
		resp, err := c.httpc.Do(req)
		if err != nil {
			return errs.Wrapf(errs.ErrNetwork, "[Client.SignOut] %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode >= http.StatusInternalServerError {
			return errs.Wrapf(errs.ErrNetwork, "[Client.SignOut] unexpected status %d", resp.StatusCode)
		}
	}

	c.setCurrent(nil)
	c.emit(gateway.Event{Kind: gateway.EventSignedOut})
	return nil
}

// CurrentSession returns the active session, renewing it first when the
// access token has expired and a refresh token is held. Absence of a
// session, including an unrenewable one, is (nil, nil), not an error.
func (c *Client) CurrentSession(ctx context.Context) (*session.Session, error) {
	c.mu.Lock()
	current := c.currentLocked()
	c.mu.Unlock()

	if current == nil {
		return nil, nil
	}
	if !current.Expired(c.nowTime()) {
		return current, nil
	}
	if current.RefreshToken == "" {
		c.setCurrent(nil)
		return nil, nil
	}

	renewed, err := c.refreshSession(ctx, current.RefreshToken)
	if err != nil {
		c.log.Debug().Err(err).Msg("session refresh failed, treating as signed out")
		c.setCurrent(nil)
		return nil, nil
	}
	return renewed, nil
}

func (c *Client) refreshSession(ctx context.Context, refreshToken string) (*session.Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", body, "")
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errs.Wrapf(errs.ErrNetwork, "[Client.refreshSession] %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.Wrapf(errs.ErrNetwork, "[Client.refreshSession] unexpected status %d", resp.StatusCode)
	}

	sess, err := c.sessionFromResponse(resp)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.refreshSession]")
	}

	c.setCurrent(&sess)
	c.emit(gateway.Event{Kind: gateway.EventTokenRefreshed, Session: &sess})
	return &sess, nil
}

func (c *Client) sessionFromResponse(resp *http.Response) (session.Session, error) {
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return session.Session{}, errors.Wrap(err, "decode token response")
	}
	if tr.AccessToken == "" {
		return session.Session{}, errors.New("token response missing access_token")
	}

	sess := session.Session{
		UserID:       tr.User.ID,
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
	}
	if tr.ExpiresIn > 0 {
		sess.ExpiresAt = c.nowTime().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	// The refresh grant omits the user object; the token claims carry the
	// subject and expiry in that case.
	if sess.UserID == "" || sess.ExpiresAt.IsZero() {
		claims, err := parseTokenClaims(tr.AccessToken)
		if err != nil {
			return session.Session{}, err
		}
		if sess.UserID == "" {
			sess.UserID = claims.UserID
		}
		if sess.ExpiresAt.IsZero() {
			sess.ExpiresAt = claims.ExpiresAt
		}
	}
	if sess.UserID == "" {
		return session.Session{}, errors.New("token response missing user identity")
	}
	return sess, nil
}
