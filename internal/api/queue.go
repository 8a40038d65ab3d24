package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/session"
)

type queueResponse struct {
	Queue []mixtape.Track `json:"queue"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// Queue fetches the user's persisted queue in play order.
func (c *Client) Queue(ctx context.Context, sess *session.Session) ([]mixtape.Track, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	var resp queueResponse
	if err := c.do(ctx, "load queue", http.MethodGet, "/api/mixtape_queue", sess, nil, &resp); err != nil {
		return nil, err
	}
	return normalize(resp.Queue), nil
}

// AddTrack appends a track to the persisted queue.
func (c *Client) AddTrack(ctx context.Context, sess *session.Session, t mixtape.Track) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	t.URI = t.SpotifyURI()
	var resp successResponse
	if err := c.do(ctx, "add song", http.MethodPost, "/api/add_song", sess, t, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &mixtape.NetworkError{Op: "add song", Status: http.StatusOK, Message: "Failed to add song"}
	}
	return nil
}

// RemoveTrack deletes a track from the persisted queue. Removing an
// absent track fails with an error matching mixtape.ErrTrackNotFound.
func (c *Client) RemoveTrack(ctx context.Context, sess *session.Session, id string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	req := map[string]string{"spotify_track_id": id}
	var resp successResponse
	if err := c.do(ctx, "remove song", http.MethodPost, "/api/remove_song", sess, req, &resp); err != nil {
		var ne *mixtape.NetworkError
		if errors.As(err, &ne) && ne.Status == http.StatusNotFound {
			ne.Err = mixtape.ErrTrackNotFound
		}
		return err
	}
	if !resp.Success {
		return &mixtape.NetworkError{Op: "remove song", Status: http.StatusOK, Message: "Failed to remove song"}
	}
	return nil
}

func normalize(tracks []mixtape.Track) []mixtape.Track {
	out := make([]mixtape.Track, len(tracks))
	for i, t := range tracks {
		out[i] = t.Normalize()
	}
	return out
}
