package feed

import (
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/shouni/go-link-gallery/pkg/parser"
)

// LinkSource は、リンクのリストを提供できる任意の型を表します。
type LinkSource interface {
	GetLinks() []string
}

// FeedAdapter は gofeed.Feed を LinkSource に適合させるためのアダプターです。
type FeedAdapter struct {
	*gofeed.Feed
}

// NewFeedAdapter は gofeed.Feed から新しいアダプターを作成します。
func NewFeedAdapter(feed *gofeed.Feed) *FeedAdapter {
	return &FeedAdapter{Feed: feed}
}

// GetLinks は gofeed.Feed から http(s) のリンクを出現順に抽出します。
func (a *FeedAdapter) GetLinks() []string {
	if a == nil || a.Feed == nil || len(a.Items) == 0 {
		return []string{}
	}

	urls := make([]string, 0, len(a.Items))
	for _, item := range a.Items {
		if item == nil {
			continue
		}
		link := strings.TrimSpace(item.Link)
		if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
			urls = append(urls, link)
		}
	}
	return urls
}

// GetAllLinks は LinkSource からリンクを抽出する汎用関数です。
func GetAllLinks(source LinkSource) []string {
	if source == nil {
		return []string{}
	}
	return source.GetLinks()
}

// ToSection はリンクファイルに追記できる形式のセクションを生成します。
// name が空の場合はフィードのタイトルを使います。limit が正の場合は先頭から limit 件に絞ります。
func ToSection(name string, f *gofeed.Feed, limit int) string {
	if strings.TrimSpace(name) == "" && f != nil {
		name = f.Title
	}
	if strings.TrimSpace(name) == "" {
		name = "Feed"
	}
	links := GetAllLinks(NewFeedAdapter(f))
	if limit > 0 && len(links) > limit {
		links = links[:limit]
	}
	return parser.FormatSection(name, links)
}
