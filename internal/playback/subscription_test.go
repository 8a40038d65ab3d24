package playback

import (
	"errors"
	"testing"
	"testing/synctest"

	"github.com/llehouerou/mixtape/internal/mixtape"
)

func TestNewSubscription_ChannelsReadable(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sub := newSubscription()

		sub.sendState(StateChange{Previous: StateReady, Current: StatePlaying})
		sub.sendTrack(TrackChange{Index: 1, Current: &mixtape.Track{ID: "a"}})
		sub.sendPlaying(PlayingChange{Playing: true})
		sub.sendError(ErrorEvent{Err: errors.New("boom")})

		e := <-sub.StateChanged
		if e.Current != StatePlaying {
			t.Errorf("StateChanged.Current = %v, want Playing", e.Current)
		}

		tr := <-sub.TrackChanged
		if tr.Index != 1 || tr.Current.ID != "a" {
			t.Errorf("TrackChanged = %+v", tr)
		}

		p := <-sub.PlayingChanged
		if !p.Playing {
			t.Error("PlayingChanged.Playing = false, want true")
		}

		if ev := <-sub.Error; ev.Err == nil {
			t.Error("Error event has nil error")
		}
	})
}

func TestSubscription_Close_SignalsDone(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		sub := newSubscription()
		sub.close()
		<-sub.Done
	})
}

func TestSubscription_NonBlocking_DropsWhenFull(t *testing.T) {
	sub := newSubscription()

	for range eventBufferSize + 5 {
		sub.sendState(StateChange{})
	}

	count := 0
	for {
		select {
		case <-sub.StateChanged:
			count++
		default:
			goto done
		}
	}
done:
	if count != eventBufferSize {
		t.Errorf("received %d events, want %d (buffer size)", count, eventBufferSize)
	}
}
