package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	textUtils "github.com/shouni/go-utils/text"

	"github.com/shouni/go-link-gallery/pkg/types"
	"github.com/shouni/go-link-gallery/pkg/urlutil"
)

// ----------------------------------------------------------------------
// 定数定義 (解析関連のみ)
// ----------------------------------------------------------------------
const (
	// MinInlineImageSize 未満の width/height が明示された画像は候補から外す
	MinInlineImageSize = 100

	// DefaultPlaceholderFormat はバリアントAで画像が見つからない場合の画像URLです。%s にはホスト名が入ります。
	DefaultPlaceholderFormat = "https://placehold.co/600x400?text=%s"

	placeholderUnknownHost = "link"
)

// inlineImageSkipWords を src に含む画像はアイコンやロゴとみなす
var inlineImageSkipWords = []string{"icon", "logo", "avatar"}

// Extractor は、Fetcher を使ってリンク1件分のメタデータ抽出を管理します。
type Extractor struct {
	fetcher           Fetcher
	variant           types.Variant
	placeholderFormat string
	logger            *slog.Logger
}

// Option は Extractor の設定を行うための関数型です。
type Option func(*Extractor)

// WithVariant は抽出のバリアントを設定します。未知の値は無視されます。
func WithVariant(v types.Variant) Option {
	return func(e *Extractor) {
		if v.Valid() {
			e.variant = v
		}
	}
}

// WithPlaceholderFormat はプレースホルダー画像URLの書式を設定します。
func WithPlaceholderFormat(format string) Option {
	return func(e *Extractor) {
		if format != "" {
			e.placeholderFormat = format
		}
	}
}

// WithLogger は進捗ログの出力先を設定します。
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor は、新しいExtractorのインスタンスを生成します。
func NewExtractor(fetcher Fetcher, opts ...Option) (*Extractor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("extract.NewExtractor: Fetcher cannot be nil")
	}
	e := &Extractor{
		fetcher:           fetcher,
		variant:           types.VariantA,
		placeholderFormat: DefaultPlaceholderFormat,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Variant は設定されているバリアントを返します。
func (e *Extractor) Variant() types.Variant {
	return e.variant
}

// ----------------------------------------------------------------------
// メイン関数
// ----------------------------------------------------------------------

// Extract は指定されたURLを1回取得し、メタデータを返します。
// エラーは返さず、失敗時はホスト名をタイトルとするフォールバックを返します。
func (e *Extractor) Extract(ctx context.Context, rawURL string) types.LinkMetadata {
	meta, err := e.fetchAndExtract(ctx, rawURL)
	if err != nil {
		e.logger.Warn("メタデータの取得に失敗しました。フォールバックを使用します", "url", rawURL, "error", err)
		return e.Fallback(rawURL)
	}
	e.logger.Debug("メタデータを取得しました", "url", rawURL, "title", meta.Title)
	return meta
}

// Fallback は取得に失敗したリンクのメタデータを返します。
func (e *Extractor) Fallback(rawURL string) types.LinkMetadata {
	return types.LinkMetadata{
		URL:         rawURL,
		Title:       fallbackTitle(rawURL),
		Description: "",
		Image:       e.missingImage(rawURL),
		Success:     false,
	}
}

func (e *Extractor) fetchAndExtract(ctx context.Context, rawURL string) (types.LinkMetadata, error) {
	// 1. URLの検証
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return types.LinkMetadata{}, fmt.Errorf("URLのパースエラー: %w", err)
	}
	if u.Host == "" {
		return types.LinkMetadata{}, fmt.Errorf("URLにホストが含まれていません: %s", rawURL)
	}

	// 2. Fetcherから生のバイト配列を取得 (通信の責務)
	htmlBytes, err := e.fetcher.FetchBytes(ctx, rawURL)
	if err != nil {
		return types.LinkMetadata{}, err
	}

	// 3. goquery.Documentに変換 (解析の責務)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return types.LinkMetadata{}, fmt.Errorf("HTML解析に失敗しました: %w", err)
	}

	return e.FromDocument(doc, rawURL), nil
}

// FromDocument は解析済みのドキュメントからメタデータを組み立てます。
func (e *Extractor) FromDocument(doc *goquery.Document, pageURL string) types.LinkMetadata {
	title := FirstNonEmpty(
		metaCandidate(doc, "og:title"),
		metaCandidate(doc, "twitter:title"),
		func() string { return textUtils.NormalizeText(doc.Find("title").First().Text()) },
		Static(fallbackTitle(pageURL)),
	)

	description := FirstNonEmpty(
		metaCandidate(doc, "og:description"),
		metaCandidate(doc, "twitter:description"),
		metaCandidate(doc, "description"),
	)

	imageSteps := []Candidate{
		rawMetaCandidate(doc, "og:image"),
		rawMetaCandidate(doc, "twitter:image"),
	}
	if e.variant == types.VariantA {
		imageSteps = append(imageSteps, func() string { return inlineImage(doc) })
	}
	image := urlutil.ResolveImage(FirstNonEmpty(imageSteps...), pageURL)

	if e.variant == types.VariantA {
		description = SanitizeDescription(description, pageURL)
	}
	if image == "" {
		image = e.missingImage(pageURL)
	}

	return types.LinkMetadata{
		URL:         pageURL,
		Title:       title,
		Description: description,
		Image:       image,
		Success:     true,
	}
}

// missingImage は画像が見つからない場合の値を返します。バリアントBでは空文字です。
func (e *Extractor) missingImage(pageURL string) string {
	if e.variant != types.VariantA {
		return ""
	}
	host := urlutil.Hostname(pageURL)
	if host == "" {
		host = placeholderUnknownHost
	}
	return fmt.Sprintf(e.placeholderFormat, url.QueryEscape(host))
}

// ----------------------------------------------------------------------
// ヘルパー関数
// ----------------------------------------------------------------------

// metaContent は property または name 属性が key に一致する最初の meta 要素の content を返します。
func metaContent(doc *goquery.Document, key string) string {
	var content string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		prop := s.AttrOr("property", "")
		name := s.AttrOr("name", "")
		if !strings.EqualFold(prop, key) && !strings.EqualFold(name, key) {
			return true
		}
		if v := strings.TrimSpace(s.AttrOr("content", "")); v != "" {
			content = v
			return false
		}
		return true
	})
	return content
}

func metaCandidate(doc *goquery.Document, key string) Candidate {
	return func() string { return textUtils.NormalizeText(metaContent(doc, key)) }
}

func rawMetaCandidate(doc *goquery.Document, key string) Candidate {
	return func() string { return metaContent(doc, key) }
}

// inlineImage は本文中の img から、アイコンや小さな画像を除いた最初の src を返します。
func inlineImage(doc *goquery.Document) string {
	var found string
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
			return true
		}
		if isSmallDimension(s.AttrOr("width", "")) || isSmallDimension(s.AttrOr("height", "")) {
			return true
		}
		lower := strings.ToLower(src)
		for _, w := range inlineImageSkipWords {
			if strings.Contains(lower, w) {
				return true
			}
		}
		found = src
		return false
	})
	return found
}

// isSmallDimension は数値として明示された寸法が MinInlineImageSize 未満かを判定します。
func isSmallDimension(v string) bool {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	if v == "" {
		return false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return false
	}
	return n < MinInlineImageSize
}

// fallbackTitle はホスト名を返し、取得できない場合はURLそのものを返します。
func fallbackTitle(rawURL string) string {
	if host := urlutil.Hostname(rawURL); host != "" {
		return host
	}
	if s := strings.TrimSpace(rawURL); s != "" {
		return s
	}
	return placeholderUnknownHost
}
