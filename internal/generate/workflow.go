// Package generate runs prompt and queue based generation requests against
// the inference service. At most one request is in flight at a time.
package generate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/session"
)

// DefaultMinQueueSize is the smallest queue accepted by FromQueue.
const DefaultMinQueueSize = 4

const (
	promptFailure = "Failed to generate mixtape"
	queueFailure  = "Failed to generate playlist"
)

// Client is the inference service.
type Client interface {
	Generate(ctx context.Context, sess *session.Session, prompt string) (*mixtape.Generation, error)
	GenerateFromQueue(ctx context.Context, sess *session.Session, tracks []mixtape.Track) (*mixtape.BatchResult, error)
}

// Queue is the part of the queue manager the workflow depends on.
type Queue interface {
	Tracks() []mixtape.Track
	Load(ctx context.Context) error
}

// Recorder stores successful prompts.
type Recorder interface {
	RecordPrompt(prompt string, analysis mixtape.AnalysisResult, at time.Time) error
}

// Kind identifies the entry point of a request.
type Kind int

const (
	KindPrompt Kind = iota
	KindQueue
)

func (k Kind) String() string {
	if k == KindQueue {
		return "queue"
	}
	return "prompt"
}

// Status is a snapshot of the workflow.
type Status struct {
	Pending bool
	Kind    Kind

	// Prompt, Analysis and Candidates come from the last successful prompt.
	// They survive failed requests.
	Prompt     string
	Analysis   *mixtape.AnalysisResult
	Candidates []mixtape.Track

	// LastBatch is the result of the last successful queue generation.
	LastBatch *mixtape.BatchResult

	// Message is the user-facing text for the last failure, empty after a
	// success.
	Message string
}

// Options configures a Workflow.
type Options struct {
	MinQueueSize int
	History      Recorder
	Logger       *zap.Logger
	Now          func() time.Time
}

// Workflow owns the analysis and candidate list.
type Workflow struct {
	client   Client
	queue    Queue
	sessions session.Provider
	history  Recorder
	minQueue int
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.Mutex
	status Status

	subsMu sync.Mutex
	subs   []*Subscription
}

// New creates a workflow.
func New(client Client, queue Queue, sessions session.Provider, opts Options) *Workflow {
	w := &Workflow{
		client:   client,
		queue:    queue,
		sessions: sessions,
		history:  opts.History,
		minQueue: opts.MinQueueSize,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if w.minQueue <= 0 {
		w.minQueue = DefaultMinQueueSize
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

// FromPrompt submits a prompt. On success the analysis and candidates
// replace the previous ones. Candidates are not queued.
func (w *Workflow) FromPrompt(ctx context.Context, text string) (*mixtape.Generation, error) {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return nil, w.reject(KindPrompt, mixtape.ErrEmptyPrompt, promptFailure)
	}
	sess := w.sessions.Current()
	if sess == nil {
		return nil, w.reject(KindPrompt, mixtape.ErrUnauthenticated, promptFailure)
	}
	if err := w.begin(KindPrompt); err != nil {
		return nil, err
	}

	var (
		gen *mixtape.Generation
		err error
	)
	defer func() { w.finish(KindPrompt, err, promptFailure) }()

	w.logger.Info("generating from prompt", zap.String("prompt", prompt))
	gen, err = w.client.Generate(ctx, sess, prompt)
	if err != nil {
		w.logger.Warn("generation failed", zap.String("prompt", prompt), zap.Error(err))
		return nil, err
	}
	gen.Prompt = prompt

	w.mu.Lock()
	analysis := gen.Analysis
	w.status.Prompt = prompt
	w.status.Analysis = &analysis
	w.status.Candidates = append([]mixtape.Track(nil), gen.Candidates...)
	w.mu.Unlock()

	w.logger.Info("generation complete",
		zap.String("mood", analysis.Mood),
		zap.String("genre", analysis.Genre),
		zap.Int("candidates", len(gen.Candidates)))

	if w.history != nil {
		if herr := w.history.RecordPrompt(prompt, analysis, w.now()); herr != nil {
			w.logger.Warn("failed to record prompt", zap.Error(herr))
		}
	}
	return gen, nil
}

// FromQueue asks the service to extend the current queue. The queue must
// hold at least the minimum number of tracks; no request is sent otherwise.
// On success the queue is reloaded.
func (w *Workflow) FromQueue(ctx context.Context) (*mixtape.BatchResult, error) {
	sess := w.sessions.Current()
	if sess == nil {
		return nil, w.reject(KindQueue, mixtape.ErrUnauthenticated, queueFailure)
	}
	tracks := w.queue.Tracks()
	if len(tracks) < w.minQueue {
		return nil, w.reject(KindQueue, w.insufficient(len(tracks)), queueFailure)
	}
	if err := w.begin(KindQueue); err != nil {
		return nil, err
	}

	var (
		res *mixtape.BatchResult
		err error
	)
	defer func() { w.finish(KindQueue, err, queueFailure) }()

	w.logger.Info("generating from queue", zap.Int("tracks", len(tracks)))
	res, err = w.client.GenerateFromQueue(ctx, sess, tracks)
	if err != nil {
		w.logger.Warn("queue generation failed", zap.Error(err))
		return nil, err
	}

	w.mu.Lock()
	w.status.LastBatch = res
	w.mu.Unlock()

	w.logger.Info("queue generation complete",
		zap.Int("added", len(res.Added)),
		zap.Int("not_found", len(res.NotFound)))

	if lerr := w.queue.Load(ctx); lerr != nil {
		w.logger.Warn("failed to reload queue after generation", zap.Error(lerr))
	}
	return res, nil
}

func (w *Workflow) insufficient(n int) error {
	if w.minQueue == DefaultMinQueueSize {
		return fmt.Errorf("%d tracks queued: %w", n, mixtape.ErrInsufficientQueueSize)
	}
	return &mixtape.ValidationError{
		Field:   "queue",
		Message: fmt.Sprintf("You need at least %d songs to generate a playlist", w.minQueue),
	}
}

// reject records a failure detected before any request was sent.
func (w *Workflow) reject(kind Kind, err error, fallback string) error {
	w.mu.Lock()
	w.status.Message = mixtape.UserMessage(err, fallback)
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.broadcast(Event{Kind: kind, Phase: PhaseRejected, Status: st, Err: err})
	return err
}

func (w *Workflow) begin(kind Kind) error {
	w.mu.Lock()
	if w.status.Pending {
		w.mu.Unlock()
		w.logger.Debug("generation rejected, one is pending", zap.Stringer("kind", kind))
		return mixtape.ErrGenerationPending
	}
	w.status.Pending = true
	w.status.Kind = kind
	w.status.Message = ""
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.broadcast(Event{Kind: kind, Phase: PhaseStarted, Status: st})
	return nil
}

// finish clears the pending flag. It runs whatever the outcome.
func (w *Workflow) finish(kind Kind, err error, fallback string) {
	w.mu.Lock()
	w.status.Pending = false
	phase := PhaseSucceeded
	if err != nil {
		phase = PhaseFailed
		w.status.Message = mixtape.UserMessage(err, fallback)
	}
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.broadcast(Event{Kind: kind, Phase: phase, Status: st, Err: err})
}

// Status returns the current status.
func (w *Workflow) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Pending reports whether a request is in flight.
func (w *Workflow) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status.Pending
}

// Analysis returns the last analysis, or nil.
func (w *Workflow) Analysis() *mixtape.AnalysisResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked().Analysis
}

func (w *Workflow) snapshotLocked() Status {
	st := w.status
	if st.Analysis != nil {
		a := *st.Analysis
		a.Keywords = append([]string(nil), a.Keywords...)
		st.Analysis = &a
	}
	st.Candidates = append([]mixtape.Track(nil), st.Candidates...)
	return st
}
