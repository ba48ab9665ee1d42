package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveImage(t *testing.T) {
	const page = "https://example.com/articles/post?id=1"

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"absolute https", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"absolute http is upgraded", "http://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"protocol relative", "//cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"root relative", "/static/a.png", "https://example.com/static/a.png"},
		{"relative", "img/a.png", "https://example.com/img/a.png"},
		{"whitespace trimmed", "  /a.png ", "https://example.com/a.png"},
		{"empty", "", ""},
		{"upper-case https scheme", "HTTPS://cdn.example.com/A.png", "https://cdn.example.com/A.png"},
		{"mixed-case http scheme is upgraded", "Http://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveImage(tt.ref, page))
		})
	}

	t.Run("http page origin is upgraded", func(t *testing.T) {
		assert.Equal(t, "https://plain.example.com/a.png", ResolveImage("/a.png", "http://plain.example.com/x"))
	})
}

func TestDisplayURL(t *testing.T) {
	tests := map[string]string{
		"https://www.example.com/":       "example.com",
		"http://example.com/path/":       "example.com/path",
		"https://blog.example.com/a?b=c": "blog.example.com/a?b=c",
		"example.com":                    "example.com",
	}
	for in, want := range tests {
		assert.Equal(t, want, DisplayURL(in), in)
	}
}

func TestHostnameAndOrigin(t *testing.T) {
	assert.Equal(t, "example.com", Hostname("https://example.com:8443/a"))
	assert.Equal(t, "", Hostname("://bad"))
	assert.Equal(t, "", Hostname("http://"))
	assert.Equal(t, "https://example.com:8443", Origin("https://example.com:8443/a"))
	assert.Equal(t, "", Origin("not a url"))
}

func TestIsVideoHost(t *testing.T) {
	assert.True(t, IsVideoHost("https://www.youtube.com/watch?v=abc"))
	assert.True(t, IsVideoHost("https://m.youtube.com/watch?v=abc"))
	assert.True(t, IsVideoHost("https://youtu.be/abc"))
	assert.True(t, IsVideoHost("https://vimeo.com/12345"))
	assert.False(t, IsVideoHost("https://notyoutube.com/watch"))
	assert.False(t, IsVideoHost("https://example.com/youtube.com"))
	assert.False(t, IsVideoHost("::"))
}
