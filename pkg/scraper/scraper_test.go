package scraper

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-link-gallery/pkg/types"
)

// recordingExtractor は呼び出し順を記録し、"fail" を含むホストを失敗として扱います。
type recordingExtractor struct {
	calls []string
}

func (r *recordingExtractor) Extract(ctx context.Context, raw string) types.LinkMetadata {
	r.calls = append(r.calls, raw)
	u, _ := url.Parse(raw)
	if u.Hostname() == "fail.example.com" {
		return types.LinkMetadata{URL: raw, Title: u.Hostname(), Success: false}
	}
	return types.LinkMetadata{URL: raw, Title: "title of " + raw, Success: true}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSequentialScraper(t *testing.T) {
	s := NewSequentialScraper(&recordingExtractor{}, -1, nil)
	assert.Equal(t, DefaultFetchDelay, s.delay)
	assert.NotNil(t, s.logger)

	s = NewSequentialScraper(&recordingExtractor{}, 0, discardLogger())
	assert.Equal(t, time.Duration(0), s.delay)
}

func TestScrapeCollections(t *testing.T) {
	collections := []types.Collection{
		{Name: "Tools", Slug: "tools", Links: []string{"https://a.example.com", "https://fail.example.com", "https://a.example.com"}},
		{Name: "Empty", Slug: "empty", Links: []string{}},
		{Name: "Media", Slug: "media", Links: []string{"https://b.example.com"}},
	}

	ext := &recordingExtractor{}
	s := NewSequentialScraper(ext, 250*time.Millisecond, discardLogger())

	var pauses []time.Duration
	s.sleep = func(ctx context.Context, d time.Duration) { pauses = append(pauses, d) }

	results := s.ScrapeCollections(context.Background(), collections)

	require.Len(t, results, len(collections))
	for i, r := range results {
		assert.Equal(t, collections[i].Slug, r.Slug)
		require.Len(t, r.Metadata, len(collections[i].Links), "メタデータはリンクと同じ長さ")
		for j, m := range r.Metadata {
			assert.Equal(t, collections[i].Links[j], m.URL, "メタデータはリンクと同じ順序")
		}
	}

	// 失敗したリンクの後も処理が継続する
	assert.Equal(t, []string{
		"https://a.example.com", "https://fail.example.com", "https://a.example.com", "https://b.example.com",
	}, ext.calls)
	assert.Equal(t, 1, results[0].Failures())
	assert.False(t, results[0].Metadata[1].Success)
	assert.True(t, results[0].Metadata[2].Success)

	// 取得ごとに1回待機する
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond}, pauses)
}

func TestSleepContext(t *testing.T) {
	t.Run("zero delay returns immediately", func(t *testing.T) {
		start := time.Now()
		sleepContext(context.Background(), 0)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("canceled context interrupts the pause", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		start := time.Now()
		sleepContext(ctx, 10*time.Second)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("waits for the delay", func(t *testing.T) {
		start := time.Now()
		sleepContext(context.Background(), 20*time.Millisecond)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})
}
