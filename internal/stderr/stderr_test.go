//go:build !windows

package stderr

import (
	"fmt"
	"os"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCapture_LogsLines(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c, err := Start(zap.New(core))
	if err != nil {
		t.Skipf("stderr capture unavailable: %v", err)
	}

	// os.Stderr writes to descriptor 2, the same one C code uses.
	fmt.Fprintln(os.Stderr, "ALSA lib pcm.c: underrun occurred")
	fmt.Fprintln(os.Stderr, "   ")
	c.Stop()

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d lines, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["line"]; got != "ALSA lib pcm.c: underrun occurred" {
		t.Errorf("line = %v", got)
	}
}

func TestCapture_NilIsSafe(t *testing.T) {
	var c *Capture
	c.Stop()
}
