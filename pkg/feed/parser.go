package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/mmcdole/gofeed"
)

var errEmptyFeed = errors.New("フィードの本文が空です")

// Fetcher はフィード本文を取得します。
// 文字コードは gofeed がXML宣言から判定するため、受信したバイト列をそのまま返す必要があります。
// httpclient.WithRawBody を指定した *httpclient.Client がこれを満たします。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Parser は RSS/Atom/JSON フィードの取得と解析を行います。
type Parser struct {
	fetcher Fetcher
	feeds   *gofeed.Parser
}

func NewParser(fetcher Fetcher) *Parser {
	return &Parser{
		fetcher: fetcher,
		feeds:   gofeed.NewParser(),
	}
}

// FetchAndParse は feedURL を1回取得して解析します。
func (p *Parser) FetchAndParse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	body, err := p.fetcher.FetchBytes(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得に失敗しました (%s): %w", feedURL, err)
	}

	f, err := p.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("フィードの解析に失敗しました (%s): %w", feedURL, err)
	}
	return f, nil
}

// Parse は取得済みのフィード本文を解析します。
func (p *Parser) Parse(body []byte) (*gofeed.Feed, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyFeed
	}
	return p.feeds.Parse(bytes.NewReader(body))
}
