// Package spotify is a minimal client for the parts of the Spotify Web API the server relies on:
// the client credentials grant and track/playlist lookups.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultAPIURL   = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	maxPlaylistPages = 50
)

var (
	ErrNotFound     = errors.New("spotify: resource not found")
	ErrUnauthorized = errors.New("spotify: unauthorized")
	ErrRequest      = errors.New("spotify: request failed")
)

type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URI        string   `json:"uri"`
	DurationMs int      `json:"duration_ms"`
	PreviewURL *string  `json:"preview_url"`
	Artists    []Artist `json:"artists"`
}

// PlaylistItem.Track is nil for removed or region-blocked entries.
type PlaylistItem struct {
	Track *Track `json:"track"`
}

type Page struct {
	Items []PlaylistItem `json:"items"`
	Next  *string        `json:"next"`
	Total int            `json:"total"`
}

type Playlist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Tracks Page   `json:"tracks"`
}

type iTokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     iTokenSource
}

func NewClient(tokens iTokenSource, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
	}
}

func (c *Client) GetTrack(ctx context.Context, id string) (*Track, error) {
	raw, err := c.get(ctx, c.baseURL+"/tracks/"+url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", id, err)
	}

	var track Track
	if err := json.Unmarshal(raw, &track); err != nil {
		return nil, fmt.Errorf("%w: failed to decode track: %w", ErrRequest, err)
	}

	return &track, nil
}

// GetPlaylistRaw returns the provider payload untouched.
func (c *Client) GetPlaylistRaw(ctx context.Context, id string) (json.RawMessage, error) {
	raw, err := c.get(ctx, c.baseURL+"/playlists/"+url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist %s: %w", id, err)
	}

	return raw, nil
}

// GetPlaylist returns the playlist with every page of items collected into Tracks.Items.
func (c *Client) GetPlaylist(ctx context.Context, id string) (*Playlist, error) {
	raw, err := c.GetPlaylistRaw(ctx, id)
	if err != nil {
		return nil, err
	}

	var playlist Playlist
	if err := json.Unmarshal(raw, &playlist); err != nil {
		return nil, fmt.Errorf("%w: failed to decode playlist: %w", ErrRequest, err)
	}

	next := playlist.Tracks.Next
	for pages := 1; next != nil && *next != "" && pages < maxPlaylistPages; pages++ {
		raw, err := c.get(ctx, *next)
		if err != nil {
			return nil, fmt.Errorf("failed to get playlist %s page: %w", id, err)
		}

		var page Page
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("%w: failed to decode playlist page: %w", ErrRequest, err)
		}

		playlist.Tracks.Items = append(playlist.Tracks.Items, page.Items...)
		next = page.Next
	}
	playlist.Tracks.Next = nil

	return &playlist, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", ErrRequest, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrRequest, resp.StatusCode)
	}
}
