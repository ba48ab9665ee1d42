package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	err := args.Error(1)

	// レスポンスが存在する場合のみ型アサーションを行う
	if args.Get(0) != nil {
		return args.Get(0).(*http.Response), err
	}
	return nil, err
}

func newResponse(status int, body string, contentType string) *http.Response {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

// fastRetries はテスト用にバックオフ間隔を短くします。
var fastRetries = WithRetryInterval(time.Millisecond, 2*time.Millisecond)

func TestNew(t *testing.T) {
	t.Run("default timeout and single attempt", func(t *testing.T) {
		client := New(0)
		assert.Equal(t, DefaultHTTPTimeout, client.Timeout())
		assert.Equal(t, DefaultHTTPTimeout, client.transport.next.(*http.Client).Timeout)
		assert.Equal(t, uint64(0), client.RetryConfig.MaxRetries)
		assert.Equal(t, InitialRetryInterval, client.RetryConfig.InitialInterval)
		assert.Equal(t, UserAgent, client.transport.userAgent)
		assert.True(t, client.transport.decode)
	})
	t.Run("custom timeout", func(t *testing.T) {
		timeout := 30 * time.Second
		client := New(timeout)
		assert.Equal(t, timeout, client.Timeout())
		assert.Equal(t, timeout, client.transport.next.(*http.Client).Timeout)
	})
	t.Run("with options", func(t *testing.T) {
		mockClient := new(MockHTTPClient)
		client := New(10*time.Second, WithHTTPClient(mockClient), WithMaxRetries(5), WithUserAgent("link-gallery-test"), WithRawBody())
		assert.Equal(t, mockClient, client.transport.next)
		assert.Equal(t, uint64(5), client.RetryConfig.MaxRetries)
		assert.Equal(t, "link-gallery-test", client.transport.userAgent)
		assert.False(t, client.transport.decode)
	})
	t.Run("empty user agent keeps default", func(t *testing.T) {
		client := New(0, WithUserAgent(""))
		assert.Equal(t, UserAgent, client.transport.userAgent)
	})
}

func TestNonRetryableHTTPError_Error(t *testing.T) {
	err := &NonRetryableHTTPError{StatusCode: 404, Body: []byte("not found")}
	assert.Equal(t, "HTTPクライアントエラー (非リトライ対象): ステータスコード 404, ボディ: not found", err.Error())
}

func TestFetchBytes(t *testing.T) {
	ctx := context.Background()

	t.Run("successful fetch sends browser headers", func(t *testing.T) {
		mockClient := new(MockHTTPClient)
		mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
			return req.Method == http.MethodGet &&
				req.Header.Get("User-Agent") == UserAgent &&
				strings.Contains(req.Header.Get("Accept"), "text/html")
		})).Return(newResponse(http.StatusOK, "<html></html>", "text/html; charset=utf-8"), nil).Once()

		client := New(0, WithHTTPClient(mockClient))
		body, err := client.FetchBytes(ctx, "https://example.com")
		require.NoError(t, err)
		assert.Equal(t, "<html></html>", string(body))
		mockClient.AssertExpectations(t)
	})

	t.Run("2xx other than 200 is success", func(t *testing.T) {
		mockClient := new(MockHTTPClient)
		mockClient.On("Do", mock.Anything).Return(newResponse(http.StatusNonAuthoritativeInfo, "ok", ""), nil).Once()

		client := New(0, WithHTTPClient(mockClient))
		body, err := client.FetchBytes(ctx, "https://example.com")
		require.NoError(t, err)
		assert.Equal(t, "ok", string(body))
	})

	t.Run("declared charset is decoded to utf-8", func(t *testing.T) {
		mockClient := new(MockHTTPClient)
		latin1 := string([]byte{'c', 'a', 'f', 0xe9})
		mockClient.On("Do", mock.Anything).Return(newResponse(http.StatusOK, latin1, "text/html; charset=iso-8859-1"), nil).Once()

		client := New(0, WithHTTPClient(mockClient))
		body, err := client.FetchBytes(ctx, "https://example.com")
		require.NoError(t, err)
		assert.Equal(t, "café", string(body))
	})

	t.Run("raw body keeps the declared encoding", func(t *testing.T) {
		mockClient := new(MockHTTPClient)
		latin1 := `<?xml version="1.0" encoding="ISO-8859-1"?><rss><channel><title>caf` + string([]byte{0xe9}) + `</title></channel></rss>`
		mockClient.On("Do", mock.Anything).Return(newResponse(http.StatusOK, latin1, "application/rss+xml; charset=iso-8859-1"), nil).Once()

		client := New(0, WithHTTPClient(mockClient), WithRawBody())
		body, err := client.FetchBytes(ctx, "https://example.com/feed")
		require.NoError(t, err)
		assert.Equal(t, latin1, string(body))
	})

	t.Run("custom user agent replaces the default", func(t *testing.T) {
		mockClient := new(MockHTTPClient)
		mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
			return req.Header.Get("User-Agent") == "link-gallery-test"
		})).Return(newResponse(http.StatusOK, "ok", ""), nil).Once()

		client := New(0, WithHTTPClient(mockClient), WithUserAgent("link-gallery-test"))
		_, err := client.FetchBytes(ctx, "https://example.com")
		require.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("network error is attempted once by default", func(t *testing.T) {
		mockClient := new(MockHTTPClient)
		mockClient.On("Do", mock.Anything).Return(nil, errors.New("network error")).Once()

		client := New(0, WithHTTPClient(mockClient))
		body, err := client.FetchBytes(ctx, "https://example.com")
		assert.Error(t, err)
		assert.Nil(t, body)
		assert.Contains(t, err.Error(), "network error")
		mockClient.AssertNumberOfCalls(t, "Do", 1)
	})

	t.Run("4xx is non-retryable", func(t *testing.T) {
		mockClient := new(MockHTTPClient)
		mockClient.On("Do", mock.Anything).Return(newResponse(http.StatusNotFound, "not found", ""), nil)

		client := New(0, WithHTTPClient(mockClient), WithMaxRetries(3), fastRetries)
		body, err := client.FetchBytes(ctx, "https://example.com/missing")
		require.Error(t, err)
		assert.Nil(t, body)
		assert.True(t, IsNonRetryableError(err))
		mockClient.AssertNumberOfCalls(t, "Do", 1)
	})

	t.Run("5xx is retried when enabled", func(t *testing.T) {
		mockClient := new(MockHTTPClient)
		mockClient.On("Do", mock.Anything).Return(newResponse(http.StatusBadGateway, "", ""), nil)

		client := New(0, WithHTTPClient(mockClient), WithMaxRetries(2), fastRetries)
		_, err := client.FetchBytes(ctx, "https://example.com")
		require.Error(t, err)
		assert.False(t, IsNonRetryableError(err))
		assert.Contains(t, err.Error(), "最大リトライ回数 (2回)")
		mockClient.AssertNumberOfCalls(t, "Do", 3)
	})

	t.Run("malformed url", func(t *testing.T) {
		client := New(0, WithHTTPClient(new(MockHTTPClient)))
		_, err := client.FetchBytes(ctx, "http://[::1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "リクエストの作成に失敗しました")
	})
}

func TestFetchBytes_HTTPServer(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path == "/gone" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<title>served</title>"))
	}))
	defer server.Close()

	client := New(2 * time.Second)

	body, err := client.FetchBytes(context.Background(), server.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "<title>served</title>", string(body))
	assert.Equal(t, UserAgent, gotUA)

	_, err = client.FetchBytes(context.Background(), server.URL+"/gone")
	require.Error(t, err)
	var httpErr *NonRetryableHTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusGone, httpErr.StatusCode)
}

func TestIsNonRetryableError(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.False(t, IsNonRetryableError(nil))
	})
	t.Run("non-retryable error", func(t *testing.T) {
		err := &NonRetryableHTTPError{}
		assert.True(t, IsNonRetryableError(err))
	})
	t.Run("other error type", func(t *testing.T) {
		assert.False(t, IsNonRetryableError(errors.New("some error")))
	})
}
