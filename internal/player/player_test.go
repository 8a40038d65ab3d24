package player

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPlayer_LoadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p := New(srv.Client(), time.Second, nil)
	defer p.Close()

	if _, err := p.Load(context.Background(), srv.URL+"/preview.mp3"); err == nil {
		t.Fatal("expected error for 404 preview")
	}
	if p.State() != Stopped {
		t.Errorf("State() = %v, want Stopped", p.State())
	}
}

func TestPlayer_LoadInvalidAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("definitely not an mp3"))
	}))
	defer srv.Close()

	p := New(srv.Client(), time.Second, nil)
	defer p.Close()

	if _, err := p.Load(context.Background(), srv.URL); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestPlayer_LoadCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	p := New(srv.Client(), time.Second, nil)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Load(ctx, srv.URL); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestPlayer_PlayWithoutSource(t *testing.T) {
	p := New(nil, time.Second, nil)
	defer p.Close()

	if err := p.Play(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Play() error = %v, want ErrNotLoaded", err)
	}
	// No-ops without a source.
	p.Pause()
	p.Seek(time.Second)
	p.Unload()
	if p.Position() != 0 {
		t.Errorf("Position() = %v, want 0", p.Position())
	}
}

func TestPlayer_CloseIsIdempotent(t *testing.T) {
	p := New(nil, 10*time.Millisecond, nil)
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestPlayer_VolumeClamps(t *testing.T) {
	p := New(nil, time.Second, nil)
	defer p.Close()

	p.SetVolume(1.5)
	if p.Volume() != 1 {
		t.Errorf("Volume() = %v, want 1", p.Volume())
	}
	p.SetVolume(-1)
	if p.Volume() != 0 {
		t.Errorf("Volume() = %v, want 0", p.Volume())
	}
	p.SetMuted(true)
	if !p.Muted() {
		t.Error("Muted() = false")
	}
}

func TestLevelToVolume(t *testing.T) {
	tests := []struct {
		level float64
		want  float64
	}{
		{0, -10},
		{1, 0},
		{0.5, -1},
		{0.25, -2},
	}
	for _, tt := range tests {
		if got := levelToVolume(tt.level); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("levelToVolume(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestMock_LoadGateHonorsContext(t *testing.T) {
	m := NewMock()
	release := m.BlockLoad()
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Load(ctx, "u"); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}
