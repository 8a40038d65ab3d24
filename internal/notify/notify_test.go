package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/llehouerou/mixtape/internal/mixtape"
)

func trackNamed(title string) mixtape.Track {
	return mixtape.Track{ID: title, Title: title, Artist: "Someone"}
}

func TestNowPlaying(t *testing.T) {
	n := NowPlaying(mixtape.Track{Title: "So What", Artist: "Miles Davis", Album: "Kind of Blue"}, "/tmp/x.img")
	if n.Title != "So What" || n.Body != "Miles Davis - Kind of Blue" || n.Icon != "/tmp/x.img" {
		t.Errorf("NowPlaying() = %+v", n)
	}

	n = NowPlaying(mixtape.Track{Title: "So What", Artist: "Miles Davis"}, "")
	if n.Body != "Miles Davis" {
		t.Errorf("Body = %q, want artist only", n.Body)
	}
}

func TestMixtapeReady(t *testing.T) {
	gen := &mixtape.Generation{
		Analysis:   mixtape.AnalysisResult{Mood: "Chill", Genre: "Jazz"},
		Candidates: make([]mixtape.Track, 5),
	}
	n := MixtapeReady(gen)
	if n.Title != "Mixtape ready" {
		t.Errorf("Title = %q", n.Title)
	}
	if n.Body != "Chill · Jazz\n5 songs found" {
		t.Errorf("Body = %q", n.Body)
	}

	n = MixtapeReady(&mixtape.Generation{})
	if n.Body != "0 songs found" {
		t.Errorf("Body = %q", n.Body)
	}
}

func TestPlaylistExtended(t *testing.T) {
	n := PlaylistExtended(&mixtape.BatchResult{
		Added:    make([]mixtape.Track, 3),
		NotFound: make([]mixtape.SongRef, 1),
	})
	if n.Body != "3 songs added, 1 not found" {
		t.Errorf("Body = %q", n.Body)
	}
}

type recorder struct {
	mu     sync.Mutex
	sent   []Notification
	closed []uint32
	next   uint32
}

func (r *recorder) Notify(n Notification) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	if n.ReplacesID != 0 {
		return n.ReplacesID, nil
	}
	r.next++
	return r.next, nil
}

func (r *recorder) Close(id uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, id)
	return nil
}

func TestAnnouncer_ReplacesNowPlaying(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("jpeg bytes"))
	}))
	defer srv.Close()

	rec := &recorder{}
	a := NewAnnouncer(rec, NewIconCache(t.TempDir(), srv.Client()), nil)
	ctx := context.Background()

	track := mixtape.Track{ID: "a", Title: "A", Artist: "X", AlbumArtURL: srv.URL + "/a.jpg"}
	a.TrackStarted(ctx, track)
	a.TrackStarted(ctx, mixtape.Track{ID: "b", Title: "B", Artist: "Y"})
	a.TrackStarted(ctx, track)

	if len(rec.sent) != 3 {
		t.Fatalf("sent %d notifications, want 3", len(rec.sent))
	}
	if rec.sent[0].ReplacesID != 0 || rec.sent[1].ReplacesID != 1 || rec.sent[2].ReplacesID != 1 {
		t.Errorf("ReplacesID = %d, %d, %d", rec.sent[0].ReplacesID, rec.sent[1].ReplacesID, rec.sent[2].ReplacesID)
	}
	if rec.sent[0].Icon == "" || rec.sent[0].Icon != rec.sent[2].Icon {
		t.Errorf("icons = %q, %q", rec.sent[0].Icon, rec.sent[2].Icon)
	}
	if rec.sent[1].Icon != "" {
		t.Errorf("track without artwork got icon %q", rec.sent[1].Icon)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("artwork fetched %d times, want 1", n)
	}
	data, err := os.ReadFile(rec.sent[0].Icon)
	if err != nil || string(data) != "jpeg bytes" {
		t.Errorf("icon file = %q, %v", data, err)
	}
}

func TestIconCache_Failure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewIconCache(t.TempDir(), srv.Client())
	if got := c.Path(context.Background(), srv.URL+"/missing.jpg"); got != "" {
		t.Errorf("Path() = %q, want empty", got)
	}
	if got := c.Path(context.Background(), ""); got != "" {
		t.Errorf("Path(\"\") = %q, want empty", got)
	}
}

func TestAnnouncer_Dismiss(t *testing.T) {
	rec := &recorder{}
	a := NewAnnouncer(rec, nil, nil)

	a.Dismiss()
	if len(rec.closed) != 0 {
		t.Fatalf("closed %v with nothing shown", rec.closed)
	}

	a.TrackStarted(context.Background(), trackNamed("So What"))
	a.Send(MixtapeReady(&mixtape.Generation{}))
	a.Dismiss()
	a.Dismiss()
	if len(rec.closed) != 1 || rec.closed[0] != 1 {
		t.Errorf("closed = %v, want [1]", rec.closed)
	}
	if a.Current() != 0 {
		t.Errorf("Current() = %d after Dismiss", a.Current())
	}

	// The next track opens a fresh notification.
	a.TrackStarted(context.Background(), trackNamed("Naima"))
	last := rec.sent[len(rec.sent)-1]
	if last.ReplacesID != 0 {
		t.Errorf("ReplacesID = %d, want 0 after Dismiss", last.ReplacesID)
	}
	if a.Current() != 3 {
		t.Errorf("Current() = %d, want 3", a.Current())
	}
}

func TestDisabled(t *testing.T) {
	n := Disabled()
	id, err := n.Notify(Notification{Title: "x"})
	if id != 0 || err != nil {
		t.Errorf("Notify() = %d, %v", id, err)
	}
	if err := n.Close(7); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
