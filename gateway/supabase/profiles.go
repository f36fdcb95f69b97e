package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	errs "github.com/roadmapapp/go-auth-client/internal/errors"
	"github.com/roadmapapp/go-auth-client/profile"
)

const profilesPath = "/rest/v1/profiles"

// pgrstObject asks PostgREST for exactly one row; zero rows become an
// error status instead of an empty array.
const pgrstObject = "application/vnd.pgrst.object+json"

// FetchProfile reads the profile row for userID.
func (c *Client) FetchProfile(ctx context.Context, userID string) (profile.Profile, error) {
	path := profilesPath + "?select=*&id=eq." + url.QueryEscape(userID)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, c.accessToken())
	if err != nil {
		return profile.Profile{}, err
	}
	req.Header.Set("Accept", pgrstObject)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return profile.Profile{}, errs.Wrapf(errs.ErrNetwork, "[Client.FetchProfile] %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusNotAcceptable:
		return profile.Profile{}, errs.Wrapf(errs.ErrUserNotFound, "[Client.FetchProfile] no profile row for %s", userID)
	default:
		return profile.Profile{}, errs.Wrapf(errs.ErrNetwork, "[Client.FetchProfile] unexpected status %d", resp.StatusCode)
	}

	return decodeProfile(resp)
}

// UpdateProfile writes the row and returns the stored representation.
func (c *Client) UpdateProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	path := profilesPath + "?id=eq." + url.QueryEscape(p.ID)
	req, err := c.newRequest(ctx, http.MethodPatch, path, profile.FromProfile(p), c.accessToken())
	if err != nil {
		return profile.Profile{}, err
	}
	req.Header.Set("Accept", pgrstObject)
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return profile.Profile{}, errs.Wrapf(errs.ErrNetwork, "[Client.UpdateProfile] %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return profile.Profile{}, errs.Wrapf(errs.ErrNetwork, "[Client.UpdateProfile] unexpected status %d", resp.StatusCode)
	}

	return decodeProfile(resp)
}

// DeleteProfile removes the row for userID.
func (c *Client) DeleteProfile(ctx context.Context, userID string) error {
	path := profilesPath + "?id=eq." + url.QueryEscape(userID)
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil, c.accessToken())
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errs.Wrapf(errs.ErrNetwork, "[Client.DeleteProfile] %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return errs.Wrapf(errs.ErrNetwork, "[Client.DeleteProfile] unexpected status %d", resp.StatusCode)
	}
	return nil
}

// accessToken returns the bearer for table requests: the session token
// when present so row-level security applies, the anon key otherwise.
func (c *Client) accessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ""
	}
	return c.current.AccessToken
}

func decodeProfile(resp *http.Response) (profile.Profile, error) {
	var dto profile.DTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return profile.Profile{}, errs.Wrapf(errs.ErrNetwork, "decode profile row: %v", err)
	}
	p, err := dto.ToProfile()
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "map profile row")
	}
	return p, nil
}
