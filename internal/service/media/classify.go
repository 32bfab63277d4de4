package media

import (
	"regexp"
	"strings"

	"github.com/sharetube/syncroom/internal/domain"
)

const videoIdLength = 11

var (
	videoRe          = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)
	videoListRe      = regexp.MustCompile(`[&?]list=([^&#]+)`)
	streamingPathRe  = regexp.MustCompile(`/(track|playlist)/([a-zA-Z0-9]+)`)
	streamingURIRe   = regexp.MustCompile(`^spotify:(track|playlist):([a-zA-Z0-9]+)$`)
	streamingHostTag = "open.spotify.com/"
)

// Classify maps a submitted link to a media reference. Unrecognized shapes become KindUnknown
// with the raw link kept.
func Classify(rawURL string) domain.MediaReference {
	rawURL = strings.TrimSpace(rawURL)

	if ref, ok := classifyStreaming(rawURL); ok {
		return ref
	}

	if ref, ok := classifyVideo(rawURL); ok {
		return ref
	}

	return domain.MediaReference{Kind: domain.KindUnknown, RawURL: rawURL}
}

func classifyStreaming(rawURL string) (domain.MediaReference, bool) {
	var match []string
	switch {
	case strings.Contains(rawURL, streamingHostTag):
		match = streamingPathRe.FindStringSubmatch(rawURL)
	case strings.HasPrefix(rawURL, "spotify:"):
		match = streamingURIRe.FindStringSubmatch(rawURL)
	}
	if match == nil {
		return domain.MediaReference{}, false
	}

	ref := domain.MediaReference{ExternalID: match[2], RawURL: rawURL}
	if match[1] == "playlist" {
		ref.Kind = domain.KindTrackCollection
		ref.CollectionID = match[2]
	} else {
		ref.Kind = domain.KindTrack
	}

	return ref, true
}

func classifyVideo(rawURL string) (domain.MediaReference, bool) {
	var listId string
	if match := videoListRe.FindStringSubmatch(rawURL); match != nil {
		listId = match[1]
	}

	if match := videoRe.FindStringSubmatch(rawURL); match != nil && len(match[2]) == videoIdLength {
		return domain.MediaReference{
			Kind:         domain.KindVideo,
			ExternalID:   match[2],
			CollectionID: listId,
			RawURL:       rawURL,
		}, true
	}

	if listId != "" {
		return domain.MediaReference{
			Kind:         domain.KindVideoCollection,
			ExternalID:   listId,
			CollectionID: listId,
			RawURL:       rawURL,
		}, true
	}

	return domain.MediaReference{}, false
}
