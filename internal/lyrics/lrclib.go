package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"karolbroda.com/ytmirror/internal/song"
)

const httpTimeout = 10 * time.Second

var (
	httpClient     *http.Client
	httpClientOnce sync.Once
)

func getHTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		transport := &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   2 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     60 * time.Second,
			TLSHandshakeTimeout: 2 * time.Second,
		}
		httpClient = &http.Client{
			Transport: transport,
			Timeout:   httpTimeout,
		}
	})
	return httpClient
}

// lrclibResponse is the LRCLIB get payload; only syncedLyrics matters here.
type lrclibResponse struct {
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// multiArtist splits a combined artist credit on commas, ampersands, or the
// word "and".
var multiArtist = regexp.MustCompile(`(?i)[,&]| and `)

// Client looks up synchronized transcripts on an LRCLIB-compatible service.
type Client struct {
	baseURL string

	// lookup is swapped out in tests.
	lookup func(ctx context.Context, title, artist, album string) ([]Line, error)
}

func NewClient(baseURL string) *Client {
	c := &Client{baseURL: baseURL}
	c.lookup = c.fetchLines
	return c
}

// Search races up to three lookups and returns the first transcript found:
// (title, artist, album), (title, artist), and, when the artist string names
// several artists, (title, first artist only). Returns nil when the song has
// no usable identity or every lookup fails.
//
// Lookups for the same song are not deduplicated here; callers that may race
// with themselves must serialize.
func (c *Client) Search(ctx context.Context, s *song.Song) []Line {
	if s == nil || s.Title == "" || s.Artist == "" {
		return nil
	}

	lookups := []func(context.Context) ([]Line, error){
		func(ctx context.Context) ([]Line, error) {
			return c.lookup(ctx, s.Title, s.Artist, s.Album)
		},
		func(ctx context.Context) ([]Line, error) {
			return c.lookup(ctx, s.Title, s.Artist, "")
		},
	}

	firstArtist := strings.TrimSpace(multiArtist.Split(s.Artist, 2)[0])
	if firstArtist != "" && firstArtist != s.Artist {
		lookups = append(lookups, func(ctx context.Context) ([]Line, error) {
			return c.lookup(ctx, s.Title, firstArtist, "")
		})
	}

	lines, ok := firstSuccess(ctx, lookups)
	if !ok {
		return nil
	}
	return lines
}

// fetchLines performs one LRCLIB lookup. It fails on a non-success status, a
// missing syncedLyrics field, or a transcript with zero parseable lines.
func (c *Client) fetchLines(ctx context.Context, title, artist, album string) ([]Line, error) {
	parsedURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid lrclib url %q: %w", c.baseURL, err)
	}

	query := parsedURL.Query()
	query.Set("track_name", title)
	query.Set("artist_name", artist)
	if album != "" {
		query.Set("album_name", album)
	}
	parsedURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build http request: %w", err)
	}
	req.Header.Set("User-Agent", "ytmirror/1.0")

	resp, err := getHTTPClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("lrclib returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read lrclib response: %w", err)
	}

	var payload lrclibResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode lrclib json: %w", err)
	}

	if payload.SyncedLyrics == "" {
		return nil, errors.New("no synced lyrics available")
	}

	lines := ParseSynced(payload.SyncedLyrics)
	if len(lines) == 0 {
		return nil, errors.New("no parseable lyric lines")
	}

	return lines, nil
}
