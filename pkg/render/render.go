package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/shouni/go-link-gallery/pkg/assets"
	"github.com/shouni/go-link-gallery/pkg/types"
	"github.com/shouni/go-link-gallery/pkg/urlutil"
)

const (
	DefaultSiteTitle = "Link Collections"
	DefaultLang      = "ja"

	// HomeFileName はトップページの出力ファイル名です。
	HomeFileName = "index.html"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options はページ描画の設定です。
type Options struct {
	SiteTitle string
	Lang      string
	Variant   types.Variant
}

// Renderer はコレクションとメタデータからHTML文書を生成します。I/Oは行いません。
// 埋め込まれる文字列はすべて html/template によってエスケープされます。
type Renderer struct {
	tmpl *template.Template
	opts Options
}

// New は組み込みテンプレートを読み込んで Renderer を生成します。
func New(opts Options) (*Renderer, error) {
	if opts.SiteTitle == "" {
		opts.SiteTitle = DefaultSiteTitle
	}
	if opts.Lang == "" {
		opts.Lang = DefaultLang
	}
	if !opts.Variant.Valid() {
		opts.Variant = types.VariantA
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("テンプレートの読み込みに失敗しました: %w", err)
	}
	return &Renderer{tmpl: tmpl, opts: opts}, nil
}

// CollectionFileName はコレクションページの出力ファイル名を返します。
func CollectionFileName(slug string) string {
	return slug + ".html"
}

type pageView struct {
	Lang       string
	PageTitle  string
	SiteTitle  string
	Stylesheet string
}

type collectionLink struct {
	Name  string
	Href  string
	Count int
}

type homeView struct {
	pageView
	Collections []collectionLink
}

type card struct {
	URL         string
	Title       string
	Image       string
	Caption     string
	Description string
}

type collectionView struct {
	pageView
	Name  string
	Cards []card
}

// RenderHome は全コレクションへのリンクを並べたトップページを生成します。
func (r *Renderer) RenderHome(results []types.CollectionResult) (string, error) {
	view := homeView{
		pageView:    r.page(r.opts.SiteTitle),
		Collections: make([]collectionLink, 0, len(results)),
	}
	for _, res := range results {
		view.Collections = append(view.Collections, collectionLink{
			Name:  res.Name,
			Href:  CollectionFileName(res.Slug),
			Count: len(res.Links),
		})
	}
	return r.execute("home", view)
}

// RenderCollection はコレクション1つ分のカード一覧ページを生成します。
func (r *Renderer) RenderCollection(res types.CollectionResult) (string, error) {
	view := collectionView{
		pageView: r.page(res.Name + " | " + r.opts.SiteTitle),
		Name:     res.Name,
		Cards:    make([]card, 0, len(res.Links)),
	}
	for i, link := range res.Links {
		var meta types.LinkMetadata
		if i < len(res.Metadata) {
			meta = res.Metadata[i]
		}
		view.Cards = append(view.Cards, r.card(link, meta))
	}
	return r.execute("collection", view)
}

func (r *Renderer) card(link string, meta types.LinkMetadata) card {
	title := meta.Title
	if title == "" {
		title = urlutil.DisplayURL(link)
	}
	c := card{
		URL:   link,
		Title: title,
		Image: meta.Image,
	}

	switch r.opts.Variant {
	case types.VariantB:
		c.Description = meta.Description
	default:
		if !urlutil.IsVideoHost(link) {
			c.Caption = urlutil.DisplayURL(link)
		}
	}
	return c
}

func (r *Renderer) page(title string) pageView {
	return pageView{
		Lang:       r.opts.Lang,
		PageTitle:  title,
		SiteTitle:  r.opts.SiteTitle,
		Stylesheet: assets.StylesheetName,
	}
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("%s ページの描画に失敗しました: %w", name, err)
	}
	return buf.String(), nil
}
