// Package artwork fetches album art and derives an accent palette for the
// lyric view.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/http"
	"time"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/nfnt/resize"
)

const (
	fetchTimeout = 5 * time.Second
	// artwork is downscaled before clustering; dominant colors survive it
	maxClusterSize = 256
)

type Palette struct {
	Primary   string
	Secondary string
	Accent    string
	Dim       string
}

func DefaultPalette() *Palette {
	return &Palette{
		Primary:   "#50FA7B",
		Secondary: "#8BE9FD",
		Accent:    "#BD93F9",
		Dim:       "#6272A4",
	}
}

// Fetch downloads and decodes the song's artwork.
func Fetch(artworkURL string) (image.Image, error) {
	if artworkURL == "" {
		return nil, errors.New("empty artwork url")
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artworkURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork fetch returned status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}

	return img, nil
}

// ExtractPalette clusters the artwork's dominant colors and ranks them by a
// saturation/brightness score. Any failure falls back to the default palette.
func ExtractPalette(img image.Image) *Palette {
	if img == nil {
		return DefaultPalette()
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxClusterSize || bounds.Dy() > maxClusterSize {
		img = resize.Thumbnail(maxClusterSize, maxClusterSize, img, resize.Lanczos3)
	}

	extracted, err := prominentcolor.KmeansWithAll(5, img, prominentcolor.ArgumentDefault, prominentcolor.DefaultSize, nil)
	if err != nil || len(extracted) < 3 {
		return DefaultPalette()
	}

	candidates := make([]scored, 0, len(extracted))
	for _, c := range extracted {
		r := float64(c.Color.R) / 255.0
		g := float64(c.Color.G) / 255.0
		b := float64(c.Color.B) / 255.0

		hi := math.Max(math.Max(r, g), b)
		lo := math.Min(math.Min(r, g), b)

		var sat float64
		if hi > 0 {
			sat = (hi - lo) / hi
		}

		candidates = append(candidates, scored{
			item:       c,
			sat:        sat,
			brightness: hi,
			score:      sat * (1.0 - math.Abs(hi-0.6)),
		})
	}

	var picks []scored
	used := make(map[uint32]bool)
	for len(picks) < 3 {
		best := -1
		for i, cand := range candidates {
			key := cand.item.Color.R<<16 | cand.item.Color.G<<8 | cand.item.Color.B
			if used[key] {
				continue
			}
			if best == -1 || cand.score > candidates[best].score {
				best = i
			}
		}
		if best == -1 {
			return DefaultPalette()
		}
		used[candidates[best].item.Color.R<<16|candidates[best].item.Color.G<<8|candidates[best].item.Color.B] = true
		picks = append(picks, candidates[best])
	}

	return &Palette{
		Primary:   hexColor(picks[0]),
		Secondary: hexColor(picks[1]),
		Accent:    hexColor(picks[2]),
		Dim:       "#6272A4",
	}
}

type scored struct {
	item       prominentcolor.ColorItem
	sat        float64
	brightness float64
	score      float64
}

// hexColor brightens very dark picks so they stay readable on a dark
// background.
func hexColor(c scored) string {
	r, g, b := c.item.Color.R, c.item.Color.G, c.item.Color.B

	if c.brightness > 0 && c.brightness < 0.4 {
		factor := math.Min(0.4/c.brightness, 2.5)
		r = uint32(math.Min(255, float64(r)*factor))
		g = uint32(math.Min(255, float64(g)*factor))
		b = uint32(math.Min(255, float64(b)*factor))
	}

	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}
