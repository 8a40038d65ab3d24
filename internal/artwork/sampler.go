// Package artwork samples the dominant color of album artwork.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder for artwork
	_ "image/jpeg" // JPEG decoder for artwork
	_ "image/png"  // PNG decoder for artwork
	"io"
	"net/http"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
)

const (
	// DefaultSampleSize is the edge of the thumbnail colors are averaged on.
	DefaultSampleSize = 32

	maxImageBytes = 8 << 20
	userAgent     = "mixtape/1.0"
)

// ErrNoOpaquePixels is returned for fully transparent images.
var ErrNoOpaquePixels = errors.New("image has no opaque pixels")

// Cache stores sampled colors by image URL.
type Cache interface {
	LoadColor(url string) (colorful.Color, bool, error)
	SaveColor(url string, c colorful.Color) error
}

// Sampler fetches artwork over HTTP and averages its colors.
type Sampler struct {
	httpClient *http.Client
	size       uint
	cache      Cache
	logger     *zap.Logger
}

// NewSampler creates a sampler. cache may be nil.
func NewSampler(httpClient *http.Client, size int, cache Cache, logger *zap.Logger) *Sampler {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if size <= 0 {
		size = DefaultSampleSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sampler{
		httpClient: httpClient,
		size:       uint(size), //nolint:gosec // size is positive
		cache:      cache,
		logger:     logger,
	}
}

// DominantColor returns the average color of the image at url.
func (s *Sampler) DominantColor(ctx context.Context, url string) (colorful.Color, error) {
	if s.cache != nil {
		c, ok, err := s.cache.LoadColor(url)
		if err != nil {
			s.logger.Debug("artwork cache lookup failed", zap.String("url", url), zap.Error(err))
		} else if ok {
			return c, nil
		}
	}

	img, err := s.fetch(ctx, url)
	if err != nil {
		return colorful.Color{}, err
	}
	c, err := Average(resize.Thumbnail(s.size, s.size, img, resize.Bilinear))
	if err != nil {
		return colorful.Color{}, fmt.Errorf("sample %s: %w", url, err)
	}

	if s.cache != nil {
		if err := s.cache.SaveColor(url, c); err != nil {
			s.logger.Debug("artwork cache store failed", zap.String("url", url), zap.Error(err))
		}
	}
	return c, nil
}

func (s *Sampler) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch artwork: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("decode artwork: %w", err)
	}
	return img, nil
}

// Average returns the alpha-weighted mean color of img.
func Average(img image.Image) (colorful.Color, error) {
	var r, g, b, a float64
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pr, pg, pb, pa := img.At(x, y).RGBA()
			if pa == 0 {
				continue
			}
			// RGBA returns alpha-premultiplied values.
			r += float64(pr)
			g += float64(pg)
			b += float64(pb)
			a += float64(pa)
		}
	}
	if a == 0 {
		return colorful.Color{}, ErrNoOpaquePixels
	}
	return colorful.Color{R: r / a, G: g / a, B: b / a}.Clamped(), nil
}
