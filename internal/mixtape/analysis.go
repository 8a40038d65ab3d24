package mixtape

import "time"

// AnalysisResult is the structured interpretation of a prompt.
type AnalysisResult struct {
	Mood     string   `json:"mood"`
	Genre    string   `json:"genre"`
	Language string   `json:"language"`
	Keywords []string `json:"keywords"`
}

// Generation is the result of submitting a prompt.
type Generation struct {
	Prompt     string
	Analysis   AnalysisResult
	Candidates []Track
}

// SongRef identifies a song by title and artist, as sent for batch generation.
type SongRef struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// BatchResult is the result of generating from the current queue.
type BatchResult struct {
	Added    []Track
	NotFound []SongRef
	Queue    []Track
}

// HistoryEntry is a locally recorded prompt with its analysis.
type HistoryEntry struct {
	ID        int64
	Prompt    string
	Analysis  AnalysisResult
	CreatedAt time.Time
}
