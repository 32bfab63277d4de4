package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/syncroom/internal/service/media"
	omitnilpointers "github.com/sharetube/syncroom/pkg/omit-nil-pointers"
	"github.com/sharetube/syncroom/pkg/rest"
	"github.com/sharetube/syncroom/pkg/spotify"
)

func (c controller) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func (c controller) getStreamingToken(w http.ResponseWriter, r *http.Request) {
	token, err := c.tokens.Token(r.Context())
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to get streaming token", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "Failed to get Spotify token"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: token})
}

type playlistParams struct {
	PlaylistId string `json:"playlist_id" validate:"required,alphanum,max=64"`
}

// getStreamingPlaylist passes the provider payload through untouched.
func (c controller) getStreamingPlaylist(w http.ResponseWriter, r *http.Request) {
	params := playlistParams{PlaylistId: chi.URLParam(r, "playlist-id")}
	if validationErrors, ok := c.validate.Validate(params); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	raw, err := c.playlists.GetPlaylistRaw(r.Context(), params.PlaylistId)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to get playlist", "playlist_id", params.PlaylistId, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, spotify.ErrNotFound) {
			status = http.StatusNotFound
		}
		rest.WriteJSON(w, status, rest.Envelope{"error": "Failed to fetch playlist"})
		return
	}

	rest.WriteRaw(w, http.StatusOK, raw)
}

type previewParams struct {
	URL string `json:"url" validate:"required,url,max=2048"`
}

func (c controller) getPreview(w http.ResponseWriter, r *http.Request) {
	params := previewParams{URL: r.URL.Query().Get("url")}
	if validationErrors, ok := c.validate.Validate(params); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	preview, err := c.mediaService.Preview(r.Context(), params.URL)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedKind) {
			rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": "unsupported link"})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to preview", "url", params.URL, "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to load preview"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, omitnilpointers.OmitNilPointers(map[string]any{
		"kind":          preview.Kind,
		"title":         preview.Title,
		"author":        preview.Author,
		"thumbnail_url": preview.ThumbnailURL,
	}))
}
