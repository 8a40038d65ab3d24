// Package player streams track previews to the audio device.
package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"go.uber.org/zap"
)

// ErrNotLoaded is returned by Play when no source is bound.
var ErrNotLoaded = errors.New("no source loaded")

const (
	eventBufferSize = 64
	// Previews are ~30s MP3s; anything much larger is not a preview.
	maxPreviewBytes = 16 << 20
	resampleQuality = 4
)

var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerRate        beep.SampleRate
)

// Player plays MP3 previews fetched over HTTP. Each preview is downloaded
// fully before playback, which keeps seeking cheap.
type Player struct {
	httpClient *http.Client
	logger     *zap.Logger
	interval   time.Duration

	mu          sync.Mutex
	state       State
	handle      uint64
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	streamer    beep.StreamSeekCloser
	format      beep.Format
	volumeLevel float64
	muted       bool

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a player reporting its position every interval.
func New(httpClient *http.Client, interval time.Duration, logger *zap.Logger) *Player {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	p := &Player{
		httpClient:  httpClient,
		logger:      logger.Named("player"),
		interval:    interval,
		state:       Stopped,
		volumeLevel: 1,
		events:      make(chan Event, eventBufferSize),
		done:        make(chan struct{}),
	}
	p.wg.Add(1)
	go p.monitor()
	return p
}

// Load downloads and decodes the preview at url.
func (p *Player) Load(ctx context.Context, url string) (uint64, error) {
	p.Unload()

	data, err := p.fetch(ctx, url)
	if err != nil {
		return 0, err
	}

	streamer, format, err := mp3.Decode(nopSeekCloser{bytes.NewReader(data)})
	if err != nil {
		return 0, fmt.Errorf("decode preview: %w", err)
	}
	if err := ctx.Err(); err != nil {
		streamer.Close()
		return 0, err
	}

	p.mu.Lock()
	p.handle++
	h := p.handle
	p.streamer = streamer
	p.format = format
	p.ctrl = nil
	p.state = Stopped
	duration := format.SampleRate.D(streamer.Len())
	p.mu.Unlock()

	p.logger.Debug("preview loaded",
		zap.String("url", url),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", duration))
	p.emit(Event{Kind: EventLoadedMetadata, Handle: h, Duration: duration})
	return h, nil
}

func (p *Player) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch preview: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch preview: unexpected status: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes))
	if err != nil {
		return nil, fmt.Errorf("read preview: %w", err)
	}
	return data, nil
}

// Play starts the loaded source, or resumes it when paused.
func (p *Player) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.streamer == nil:
		return ErrNotLoaded
	case p.state == Playing:
		return nil
	case p.state == Paused && p.ctrl != nil:
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()
		p.state = Playing
		return nil
	}

	rate, err := initSpeaker(p.format.SampleRate)
	if err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	var source beep.Streamer = p.streamer
	if p.format.SampleRate != rate {
		source = beep.Resample(resampleQuality, p.format.SampleRate, rate, p.streamer)
	}

	p.ctrl = &beep.Ctrl{Streamer: source}
	p.volume = &effects.Volume{
		Streamer: p.ctrl,
		Base:     2,
		Volume:   levelToVolume(p.volumeLevel),
		Silent:   p.muted,
	}
	h := p.handle
	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		// Runs on the speaker goroutine with its lock held.
		go p.finished(h)
	})))
	p.state = Playing
	return nil
}

func initSpeaker(rate beep.SampleRate) (beep.SampleRate, error) {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerInitialized {
		return speakerRate, nil
	}
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return 0, err
	}
	speakerInitialized = true
	speakerRate = rate
	return rate, nil
}

// Pause pauses playback.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Playing || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = Paused
}

// Seek moves to an absolute position within the loaded source.
func (p *Player) Seek(position time.Duration) {
	p.mu.Lock()
	if p.streamer == nil {
		p.mu.Unlock()
		return
	}
	target := p.format.SampleRate.N(position)
	target = max(0, min(target, p.streamer.Len()-1))
	if p.ctrl != nil {
		speaker.Lock()
	}
	err := p.streamer.Seek(target)
	if p.ctrl != nil {
		speaker.Unlock()
	}
	h := p.handle
	pos := p.format.SampleRate.D(target)
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("seek failed", zap.Error(err))
		return
	}
	p.emit(Event{Kind: EventTimeUpdate, Handle: h, Position: pos})
}

// Unload stops playback and releases the source.
func (p *Player) Unload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return
	}
	if p.ctrl != nil {
		speaker.Clear()
	}
	p.streamer.Close()
	p.streamer = nil
	p.ctrl = nil
	p.volume = nil
	p.state = Stopped
	// Invalidate callbacks from the released source.
	p.handle++
}

// State returns the player state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *Player) positionLocked() time.Duration {
	if p.streamer == nil {
		return 0
	}
	if p.ctrl != nil {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return p.format.SampleRate.D(p.streamer.Position())
}

// Events returns the media event stream.
func (p *Player) Events() <-chan Event {
	return p.events
}

// Close releases the source and stops the monitor goroutine.
func (p *Player) Close() error {
	p.closeOnce.Do(func() {
		p.Unload()
		close(p.done)
	})
	p.wg.Wait()
	return nil
}

func (p *Player) monitor() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.mu.Lock()
			if p.state != Playing {
				p.mu.Unlock()
				continue
			}
			ev := Event{Kind: EventTimeUpdate, Handle: p.handle, Position: p.positionLocked()}
			p.mu.Unlock()
			p.emit(ev)
		case <-p.done:
			return
		}
	}
}

func (p *Player) finished(h uint64) {
	p.mu.Lock()
	if h != p.handle || p.state != Playing {
		p.mu.Unlock()
		return
	}
	p.state = Stopped
	p.ctrl = nil
	p.mu.Unlock()

	// Ended must not be dropped.
	select {
	case p.events <- Event{Kind: EventEnded, Handle: h}:
	case <-p.done:
	}
}

// emit sends an event, dropping it if the consumer is behind.
func (p *Player) emit(e Event) {
	select {
	case p.events <- e:
	default:
	}
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }
