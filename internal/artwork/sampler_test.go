package artwork

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func solid(c color.Color, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

type memCache struct {
	mu     sync.Mutex
	colors map[string]colorful.Color
}

func (c *memCache) LoadColor(url string) (colorful.Color, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	col, ok := c.colors[url]
	return col, ok, nil
}

func (c *memCache) SaveColor(url string, col colorful.Color) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.colors == nil {
		c.colors = make(map[string]colorful.Color)
	}
	c.colors[url] = col
	return nil
}

func TestAverage(t *testing.T) {
	tests := []struct {
		name    string
		img     image.Image
		want    string
		wantErr error
	}{
		{
			name: "solid",
			img:  solid(color.RGBA{R: 102, G: 126, B: 234, A: 255}, 4, 4),
			want: "#667eea",
		},
		{
			name: "half black half white",
			img: func() image.Image {
				img := solid(color.White, 2, 1)
				img.Set(0, 0, color.Black)
				return img
			}(),
			want: "#808080",
		},
		{
			name: "transparent pixels ignored",
			img: func() image.Image {
				img := solid(color.RGBA{R: 255, A: 255}, 2, 1)
				img.Set(1, 0, color.RGBA{})
				return img
			}(),
			want: "#ff0000",
		},
		{
			name:    "fully transparent",
			img:     solid(color.RGBA{}, 2, 2),
			wantErr: ErrNoOpaquePixels,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Average(tt.img)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Average() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.Hex() != tt.want {
				t.Errorf("Average() = %s, want %s", got.Hex(), tt.want)
			}
		})
	}
}

func TestSampler_DominantColor(t *testing.T) {
	data := encodePNG(t, solid(color.RGBA{R: 67, G: 206, B: 162, A: 255}, 64, 64))
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/cover.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(data)
		case "/garbage":
			_, _ = w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cache := &memCache{}
	s := NewSampler(srv.Client(), 8, cache, nil)
	ctx := context.Background()

	c, err := s.DominantColor(ctx, srv.URL+"/cover.png")
	if err != nil {
		t.Fatalf("DominantColor() error = %v", err)
	}
	want, _ := colorful.Hex("#43cea2")
	if d := c.DistanceRgb(want); d > 0.01 {
		t.Errorf("DominantColor() = %s, want about #43cea2 (distance %f)", c.Hex(), d)
	}

	// Second lookup is served from the cache.
	if _, err := s.DominantColor(ctx, srv.URL+"/cover.png"); err != nil {
		t.Fatalf("cached DominantColor() error = %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1", hits.Load())
	}

	for _, path := range []string{"/missing.png", "/garbage"} {
		if _, err := s.DominantColor(ctx, srv.URL+path); err == nil {
			t.Errorf("DominantColor(%s) error = nil", path)
		}
	}
	if _, ok, _ := cache.LoadColor(srv.URL + "/garbage"); ok {
		t.Error("failed sample was cached")
	}
}

func TestSampler_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	s := NewSampler(srv.Client(), 0, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.DominantColor(ctx, srv.URL+"/slow.png"); !errors.Is(err, context.Canceled) {
		t.Errorf("DominantColor() error = %v, want context.Canceled", err)
	}
}
