package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shouni/go-link-gallery/pkg/assets"
	"github.com/shouni/go-link-gallery/pkg/config"
	"github.com/shouni/go-link-gallery/pkg/extract"
	"github.com/shouni/go-link-gallery/pkg/httpclient"
	"github.com/shouni/go-link-gallery/pkg/parser"
	"github.com/shouni/go-link-gallery/pkg/render"
	"github.com/shouni/go-link-gallery/pkg/scraper"
)

const (
	outputDirPerm  = 0o755
	outputFilePerm = 0o644
)

// Summary はビルド結果の集計です。
type Summary struct {
	Collections int
	Links       int
	Failures    int
	Files       []string // 書き出したファイルのパス (書き出し順)
}

// Builder はリンクファイルの読み込みから静的ページの書き出しまでを順番に実行します。
type Builder struct {
	cfg      config.Config
	scraper  scraper.Scraper
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewExtractor は設定に従って HTTP クライアントと Extractor を組み立てます。
func NewExtractor(cfg config.Config, logger *slog.Logger) (*extract.Extractor, error) {
	client := httpclient.New(
		cfg.Timeout(),
		httpclient.WithMaxRetries(cfg.MaxRetries),
		httpclient.WithUserAgent(cfg.UserAgent),
	)
	extractor, err := extract.NewExtractor(
		client,
		extract.WithVariant(cfg.Variant),
		extract.WithPlaceholderFormat(cfg.Placeholder),
		extract.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("Extractorの初期化エラー: %w", err)
	}
	return extractor, nil
}

// New は設定から依存関係を組み立てた Builder を返します。
func New(cfg config.Config, logger *slog.Logger) (*Builder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定が不正です: %w", err)
	}
	extractor, err := NewExtractor(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewWithScraper(cfg, scraper.NewSequentialScraper(extractor, cfg.Delay, logger), logger)
}

// NewWithScraper は任意の Scraper を使う Builder を返します。
func NewWithScraper(cfg config.Config, s scraper.Scraper, logger *slog.Logger) (*Builder, error) {
	if s == nil {
		return nil, fmt.Errorf("pipeline.NewWithScraper: Scraper cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	renderer, err := render.New(render.Options{
		SiteTitle: cfg.SiteTitle,
		Variant:   cfg.Variant,
	})
	if err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg, scraper: s, renderer: renderer, logger: logger}, nil
}

// Run はビルドを実行します。入力ファイルや出力先のエラーは即座に返し、
// リンクごとの取得失敗はフォールバックのカードとして出力に残します。
func (b *Builder) Run(ctx context.Context) (*Summary, error) {
	// 1. リンクファイルの読み込み
	collections, err := parser.ParseFile(b.cfg.Input)
	if err != nil {
		return nil, err
	}
	b.logger.Info("リンクファイルを読み込みました", "input", b.cfg.Input, "collections", len(collections))

	// 2. メタデータの取得 (1件ずつ順番に)
	results := b.scraper.ScrapeCollections(ctx, collections)

	summary := &Summary{Collections: len(results)}
	for i, res := range results {
		if len(res.Metadata) != len(res.Links) {
			return nil, fmt.Errorf("コレクション %q のメタデータ件数が一致しません (リンク: %d, メタデータ: %d)", res.Name, len(res.Links), len(res.Metadata))
		}
		summary.Links += len(res.Links)
		summary.Failures += results[i].Failures()
	}

	// 3. 出力ディレクトリの作成
	if err := os.MkdirAll(b.cfg.Output, outputDirPerm); err != nil {
		return nil, fmt.Errorf("出力ディレクトリの作成に失敗しました (%s): %w", b.cfg.Output, err)
	}

	// 4. トップページ
	home, err := b.renderer.RenderHome(results)
	if err != nil {
		return nil, err
	}
	if err := b.write(summary, render.HomeFileName, []byte(home)); err != nil {
		return nil, err
	}

	// 5. コレクションページ
	for _, res := range results {
		page, err := b.renderer.RenderCollection(res)
		if err != nil {
			return nil, err
		}
		if err := b.write(summary, render.CollectionFileName(res.Slug), []byte(page)); err != nil {
			return nil, err
		}
	}

	// 6. スタイルシート
	css, err := assets.Stylesheet(b.cfg.Stylesheet)
	if err != nil {
		return nil, err
	}
	if err := b.write(summary, assets.StylesheetName, css); err != nil {
		return nil, err
	}

	b.logger.Info("ビルドが完了しました",
		"output", b.cfg.Output,
		"collections", summary.Collections,
		"links", summary.Links,
		"failures", summary.Failures,
	)
	return summary, nil
}

func (b *Builder) write(summary *Summary, name string, data []byte) error {
	path := filepath.Join(b.cfg.Output, name)
	if err := os.WriteFile(path, data, outputFilePerm); err != nil {
		return fmt.Errorf("ファイルの書き込みに失敗しました (%s): %w", path, err)
	}
	summary.Files = append(summary.Files, path)
	b.logger.Debug("ファイルを書き出しました", "path", path, "bytes", len(data))
	return nil
}
