package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"golang.org/x/net/html/charset"
)

// ----------------------------------------------------------------------
// 定数とインターフェース
// ----------------------------------------------------------------------

const (
	// DefaultHTTPTimeout は、デフォルトのHTTPタイムアウトです。
	DefaultHTTPTimeout = httpkit.DefaultHTTPTimeout
	// DefaultMaxRetries は既定の追加試行回数です。0 の場合、リンク1件につきGETは1回だけです。
	DefaultMaxRetries = 0

	// 再試行を有効にした場合のバックオフ間隔
	InitialRetryInterval = 500 * time.Millisecond
	MaxRetryInterval     = 5 * time.Second

	// UserAgent は、サイトからのブロックを避けるためのUser-Agentです。
	UserAgent = httpkit.UserAgent
	accept    = "text/html,application/xhtml+xml,application/rss+xml,application/atom+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Doer は、標準の *http.Client.Do() と互換性のあるHTTPクライアントのインターフェースです。
type Doer = httpkit.Doer

// NonRetryableHTTPError はHTTP 4xx系など、再試行しないステータスコードエラーです。
type NonRetryableHTTPError = httpkit.NonRetryableHTTPError

// Client は httpkit.Client をラップし、ヘッダーの付与と文字コードの変換を追加します。
// 再試行、ステータスコードの判定、ボディサイズの制限は httpkit.Client が処理します。
type Client struct {
	*httpkit.Client

	timeout   time.Duration
	transport *transport
}

// ----------------------------------------------------------------------
// 設定とコンストラクタ
// ----------------------------------------------------------------------

// ClientOption はClientの設定を行うための関数型です。
type ClientOption func(*Client)

// WithHTTPClient はカスタムのDoerを設定します。
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *Client) {
		c.transport.next = doer
	}
}

// WithMaxRetries は追加試行の最大回数を設定します。
func WithMaxRetries(max uint64) ClientOption {
	return func(c *Client) {
		httpkit.WithMaxRetries(max)(c.Client)
	}
}

// WithRetryInterval はバックオフの初期間隔と最大間隔を設定します。
func WithRetryInterval(initial, max time.Duration) ClientOption {
	return func(c *Client) {
		httpkit.WithInitialInterval(initial)(c.Client)
		httpkit.WithMaxInterval(max)(c.Client)
	}
}

// WithUserAgent は送信する User-Agent を上書きします。空文字の場合は既定値を使います。
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.transport.userAgent = ua
		}
	}
}

// WithRawBody はレスポンスボディを受信したバイト列のまま返します。
// XML宣言で文字コードを判定するフィードの取得に使います。
func WithRawBody() ClientOption {
	return func(c *Client) {
		c.transport.decode = false
	}
}

// New は新しいClientを初期化します。timeout が0以下の場合は DefaultHTTPTimeout を使います。
func New(timeout time.Duration, options ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	c := &Client{
		Client: httpkit.New(
			timeout,
			httpkit.WithMaxRetries(DefaultMaxRetries),
			httpkit.WithInitialInterval(InitialRetryInterval),
			httpkit.WithMaxInterval(MaxRetryInterval),
		),
		timeout: timeout,
		transport: &transport{
			next:      &http.Client{Timeout: timeout},
			userAgent: UserAgent,
			decode:    true,
		},
	}
	for _, opt := range options {
		opt(c)
	}

	// 全オプション適用後の transport を httpkit.Client に差し込む
	httpkit.WithHTTPClient(c.transport)(c.Client)
	return c
}

// Timeout は1リクエストあたりの実効タイムアウトを返します。
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// IsNonRetryableError は与えられたエラーが非リトライ対象のHTTPエラーであるかを判断します。
// httpkit の同名関数を呼び出します。
func IsNonRetryableError(err error) bool {
	return httpkit.IsNonRetryableError(err)
}

// ----------------------------------------------------------------------
// transport
// ----------------------------------------------------------------------

// transport は httpkit.Client から呼ばれる Doer です。
// リクエストにヘッダーを付与し、2xx のレスポンスボディを UTF-8 に変換します。
type transport struct {
	next      Doer
	userAgent string
	decode    bool
}

func (t *transport) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := t.next.Do(req)
	if err != nil || !t.decode {
		return resp, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil
	}
	// サイズ超過は httpkit 側で Content-Length から判定させる
	if resp.ContentLength > httpkit.MaxResponseBodySize {
		return resp, nil
	}

	// Content-Type ヘッダー、BOM、meta 宣言の順に文字コードを判定する
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("文字コードの判定に失敗しました: %w", err)
	}
	resp.Body = decodedBody{Reader: reader, Closer: resp.Body}
	resp.ContentLength = -1
	return resp, nil
}

type decodedBody struct {
	io.Reader
	io.Closer
}
