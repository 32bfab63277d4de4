package ytvideodata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const (
	DefaultOEmbedURL = "https://www.youtube.com/oembed"
	DefaultPageURL   = "https://youtu.be/"
	defaultThumbnail = "https://i.ytimg.com/vi/%s/hqdefault.jpg"
)

type VideoData struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

type Client struct {
	httpClient *http.Client
	oembedURL  string
	pageURL    string
}

func New(httpClient *http.Client, oembedURL, pageURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if oembedURL == "" {
		oembedURL = DefaultOEmbedURL
	}
	if pageURL == "" {
		pageURL = DefaultPageURL
	}

	return &Client{
		httpClient: httpClient,
		oembedURL:  oembedURL,
		pageURL:    pageURL,
	}
}

// Get returns video metadata from oEmbed, falling back to the watch page for videos that
// disallow embedding.
func (c *Client) Get(ctx context.Context, videoId string) (*VideoData, error) {
	videoData, err := c.getVideoWithEmbed(ctx, videoId)
	if err != nil {
		if !errors.Is(err, ErrVideoNotEmbeddable) {
			return nil, fmt.Errorf("failed to get video data with embed: %w", err)
		}

		videoData, err = c.getFromPage(ctx, videoId)
		if err != nil {
			return nil, fmt.Errorf("failed to get video data from page: %w", err)
		}
	}

	return videoData, nil
}
