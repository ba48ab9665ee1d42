package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-link-gallery/pkg/types"
)

const (
	// DefaultFetchDelay は、各取得の後に挟む待機時間です。リモートサーバーへの負荷を避けます。
	DefaultFetchDelay = 500 * time.Millisecond
)

// MetadataExtractor はリンク1件分のメタデータを返す機能です。*extract.Extractor がこれを満たします。
// 失敗時もエラーではなくフォールバックのメタデータを返す必要があります。
type MetadataExtractor interface {
	Extract(ctx context.Context, url string) types.LinkMetadata
}

// Scraper はコレクション群のメタデータ取得機能を提供するインターフェースです。
type Scraper interface {
	ScrapeCollections(ctx context.Context, collections []types.Collection) []types.CollectionResult
}

// SequentialScraper はリンクを1件ずつ順番に取得する Scraper の実装です。
// 同時に実行中の取得は常に1件のみです。
type SequentialScraper struct {
	extractor MetadataExtractor
	delay     time.Duration
	logger    *slog.Logger
	sleep     func(ctx context.Context, d time.Duration)
}

// NewSequentialScraper は SequentialScraper を初期化します。delay が負の場合は既定値を使います。
func NewSequentialScraper(extractor MetadataExtractor, delay time.Duration, logger *slog.Logger) *SequentialScraper {
	if delay < 0 {
		delay = DefaultFetchDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SequentialScraper{
		extractor: extractor,
		delay:     delay,
		logger:    logger,
		sleep:     sleepContext,
	}
}

// ScrapeCollections は全コレクションのリンクを出現順に取得します。
// 各結果の Metadata は対応するコレクションの Links と同じ長さ・同じ順序になります。
func (s *SequentialScraper) ScrapeCollections(ctx context.Context, collections []types.Collection) []types.CollectionResult {
	results := make([]types.CollectionResult, 0, len(collections))
	for _, c := range collections {
		results = append(results, s.ScrapeCollection(ctx, c))
	}
	return results
}

// ScrapeCollection はコレクション1つ分のリンクを取得します。
func (s *SequentialScraper) ScrapeCollection(ctx context.Context, c types.Collection) types.CollectionResult {
	s.logger.Info("コレクションの取得を開始します", "collection", c.Name, "links", len(c.Links))

	metadata := make([]types.LinkMetadata, 0, len(c.Links))
	for i, link := range c.Links {
		meta := s.extractor.Extract(ctx, link)
		metadata = append(metadata, meta)

		s.logger.Info("リンクを処理しました",
			"collection", c.Slug,
			"progress", progress(i+1, len(c.Links)),
			"url", link,
			"success", meta.Success,
		)

		// 取得のたびに一定時間待機する
		s.sleep(ctx, s.delay)
	}

	return types.CollectionResult{
		Collection: c,
		Metadata:   metadata,
	}
}

// sleepContext は d だけ待機します。コンテキストが終了した場合は即座に戻ります。
func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func progress(done, total int) string {
	return fmt.Sprintf("%d/%d", done, total)
}
