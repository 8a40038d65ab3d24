package mpris

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/mixtape/internal/playback"
)

type trackInfo struct {
	trackID string
	title   string
	artist  string
	album   string
	artURL  string
	url     string
	length  time.Duration
}

func metadataFor(snap playback.Snapshot) (trackInfo, bool) {
	t := snap.Track
	if t == nil {
		return trackInfo{}, false
	}
	return trackInfo{
		trackID: formatTrackID(t.ID),
		title:   t.Title,
		artist:  t.Artist,
		album:   t.Album,
		artURL:  t.AlbumArtURL,
		url:     t.PreviewURL,
		length:  snap.Duration,
	}, true
}

func playbackStatus(s playback.State) types.PlaybackStatus {
	switch s {
	case playback.StatePlaying, playback.StateLoading:
		return types.PlaybackStatusPlaying
	case playback.StatePaused:
		return types.PlaybackStatusPaused
	default:
		return types.PlaybackStatusStopped
	}
}

// canNavigate mirrors the controller: next and previous wrap, and are
// disabled for queues of one track or less.
func canNavigate(snap playback.Snapshot) bool {
	return snap.QueueLen > 1
}

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
