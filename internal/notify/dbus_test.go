//go:build linux

package notify

import (
	"os"
	"testing"
)

func TestHints(t *testing.T) {
	tests := []struct {
		name      string
		n         Notification
		wantImage string
		transient bool
	}{
		{"themed icon", Notification{Icon: "audio-x-generic"}, "", false},
		{"artwork file", Notification{Icon: "/cache/ab.img"}, "file:///cache/ab.img", false},
		{"replacement", Notification{ReplacesID: 4}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := hints(tt.n)
			if got := h["desktop-entry"].Value(); got != desktopID {
				t.Errorf("desktop-entry = %v", got)
			}
			img, ok := h["image-path"]
			switch {
			case tt.wantImage == "" && ok:
				t.Errorf("unexpected image-path %v", img.Value())
			case tt.wantImage != "" && (!ok || img.Value() != tt.wantImage):
				t.Errorf("image-path = %v, want %q", img.Value(), tt.wantImage)
			}
			if _, ok := h["transient"]; ok != tt.transient {
				t.Errorf("transient set = %v, want %v", ok, tt.transient)
			}
		})
	}
}

func TestBusNotifier_NowPlayingLifecycle(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}
	notifier, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, ok := notifier.(*busNotifier); !ok {
		t.Skip("session bus not reachable")
	}

	a := NewAnnouncer(notifier, nil, nil)
	a.Send(Notification{Title: "Mixtape ready", Timeout: 1000, Urgency: UrgencyNormal})
	if a.Current() != 0 {
		t.Error("one-off notification tracked as now playing")
	}
	a.TrackStarted(t.Context(), trackNamed("So What"))
	first := a.Current()
	if first == 0 {
		t.Fatal("now playing not shown")
	}
	a.TrackStarted(t.Context(), trackNamed("Naima"))
	if a.Current() != first {
		t.Errorf("replacement id = %d, want %d", a.Current(), first)
	}
	a.Dismiss()
	if a.Current() != 0 {
		t.Error("Dismiss kept the id")
	}
}
