package api

import (
	"context"
	"net/http"

	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/session"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Analysis mixtape.AnalysisResult `json:"analysis"`
	Results  []mixtape.Track        `json:"spotify_results"`
	Prompt   string                 `json:"prompt"`
}

type batchRequest struct {
	Songs []mixtape.SongRef `json:"songs"`
}

type batchResponse struct {
	Added    []mixtape.Track   `json:"added"`
	NotFound []mixtape.SongRef `json:"not_found"`
	Queue    []mixtape.Track   `json:"mixtape_queue"`
}

// Generate submits a prompt and returns its analysis and candidate tracks.
func (c *Client) Generate(ctx context.Context, sess *session.Session, prompt string) (*mixtape.Generation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	var resp generateResponse
	if err := c.do(ctx, "generate", http.MethodPost, "/api/generate", sess, generateRequest{Prompt: prompt}, &resp); err != nil {
		return nil, err
	}
	if resp.Prompt == "" {
		resp.Prompt = prompt
	}
	return &mixtape.Generation{
		Prompt:     resp.Prompt,
		Analysis:   resp.Analysis,
		Candidates: mixtape.Dedupe(normalize(resp.Results)),
	}, nil
}

// GenerateFromQueue asks the inference service to extend the queue based on
// the given tracks. The server appends its picks to the persisted queue.
func (c *Client) GenerateFromQueue(ctx context.Context, sess *session.Session, tracks []mixtape.Track) (*mixtape.BatchResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	songs := make([]mixtape.SongRef, len(tracks))
	for i, t := range tracks {
		songs[i] = mixtape.SongRef{Title: t.Title, Artist: t.Artist}
	}
	var resp batchResponse
	if err := c.do(ctx, "generate playlist", http.MethodPost, "/api/generate_playlist_from_songs", sess, batchRequest{Songs: songs}, &resp); err != nil {
		return nil, err
	}
	return &mixtape.BatchResult{
		Added:    normalize(resp.Added),
		NotFound: resp.NotFound,
		Queue:    normalize(resp.Queue),
	}, nil
}
