package urlutil

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// videoDomains は動画配信サービスとして扱う登録可能ドメインです。
var videoDomains = map[string]struct{}{
	"youtube.com": {},
	"youtu.be":    {},
	"vimeo.com":   {},
}

// Hostname はURLのホスト名を返します。解析できない、またはホストが空の場合は空文字を返します。
func Hostname(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Origin は "scheme://host[:port]" を返します。
func Origin(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + u.Host
}

// RegistrableDomain は公開サフィックスリストに基づく eTLD+1 を返します ("m.youtube.com" -> "youtube.com")。
func RegistrableDomain(rawURL string) string {
	host := strings.ToLower(Hostname(rawURL))
	if host == "" {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// IsVideoHost はURLが既知の動画配信サービスに属するかを判定します。
func IsVideoHost(rawURL string) bool {
	_, ok := videoDomains[RegistrableDomain(rawURL)]
	return ok
}

// ResolveImage は画像参照をページのオリジンに対する絶対URLへ正規化し、http を https に書き換えます。
func ResolveImage(ref, pageURL string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	var resolved string
	switch {
	case strings.HasPrefix(ref, "//"):
		resolved = "https:" + ref
	case hasPrefixFold(ref, "https://"):
		resolved = "https://" + ref[len("https://"):]
	case hasPrefixFold(ref, "http://"):
		resolved = "http://" + ref[len("http://"):]
	case strings.HasPrefix(ref, "/"):
		resolved = Origin(pageURL) + ref
	default:
		resolved = Origin(pageURL) + "/" + ref
	}

	if strings.HasPrefix(resolved, "http://") {
		resolved = "https://" + strings.TrimPrefix(resolved, "http://")
	}
	return resolved
}

// hasPrefixFold はスキームのように大文字小文字を区別しない前方一致を判定します。
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// DisplayURL はカードに表示するためのURL文字列を返します。
// プロトコル、先頭の "www."、末尾のスラッシュを取り除きます。
func DisplayURL(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, "/")
}
