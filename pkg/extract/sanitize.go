package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/shouni/go-link-gallery/pkg/urlutil"
)

const (
	MinDescriptionLength = 10
	MaxDescriptionLength = 200
	Ellipsis             = "..."
)

// boilerplatePhrases は動画配信サービスがどのページにも付ける定型の説明文です (小文字で比較)。
var boilerplatePhrases = map[string][]string{
	"youtube.com": {
		"enjoy the videos and music you love",
		"upload original content, and share it all with friends",
		"share your videos with friends, family, and the world",
		"auf youtube findest du die angesagtesten videos",
	},
	"youtu.be": {
		"enjoy the videos and music you love",
		"share your videos with friends, family, and the world",
	},
	"vimeo.com": {
		"vimeo is the home for high quality videos",
		"join the web's most supportive community of creators",
	},
}

// SanitizeDescription は短すぎる説明文や動画サイトの定型文を取り除き、長すぎる説明文を切り詰めます。
func SanitizeDescription(description, pageURL string) string {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) < MinDescriptionLength {
		return ""
	}
	if IsBoilerplate(description, pageURL) {
		return ""
	}
	return Truncate(description, MaxDescriptionLength)
}

// IsBoilerplate は動画配信サービスのURLで、説明文が既知の定型文を含むかを判定します。
func IsBoilerplate(description, pageURL string) bool {
	if !urlutil.IsVideoHost(pageURL) {
		return false
	}
	phrases := boilerplatePhrases[urlutil.RegistrableDomain(pageURL)]
	lower := strings.ToLower(description)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Truncate は max 文字 (ルーン単位) を超える文字列を max 文字 + 省略記号にします。
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + Ellipsis
}
