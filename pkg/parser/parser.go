package parser

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/shouni/go-link-gallery/pkg/types"
)

const (
	// HeadingMarker はコレクションの開始を示す行頭マーカーです。
	HeadingMarker = "# "

	fallbackSlugPrefix = "collection"
)

var (
	nonSlugChars   = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	hyphenRuns     = regexp.MustCompile(`-+`)
)

// ParseFile はリンクファイルを読み込み、コレクションの一覧に変換します。
func ParseFile(path string) ([]types.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("リンクファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	return Parse(string(data)), nil
}

// Parse はテキストを行単位で走査し、見出しごとのコレクションを返します。
// 最初の見出しより前にあるリンクは破棄されます。URLの妥当性はここでは検証しません。
func Parse(text string) []types.Collection {
	var (
		collections []types.Collection
		current     *types.Collection
	)
	seen := make(map[string]bool)

	flush := func() {
		if current != nil {
			collections = append(collections, *current)
		}
	}

	// 行の長さに上限は設けない
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(line, HeadingMarker):
			flush()
			name := strings.TrimSpace(strings.TrimPrefix(line, HeadingMarker))
			current = &types.Collection{
				Name:  name,
				Slug:  uniqueSlug(Slugify(name), len(collections)+1, seen),
				Links: []string{},
			}
		case isLink(line):
			if current == nil {
				continue
			}
			current.Links = append(current.Links, line)
		}
	}
	flush()

	return collections
}

// Slugify はコレクション名をURLで安全に使える識別子へ変換します。
// 結果は小文字の英数字・アンダースコア・ハイフンのみで構成され、冪等です。
func Slugify(name string) string {
	// 互換文字 (ℝ など) は分解後に大文字になるため、小文字化は分解の後に行う
	s := strings.ToLower(foldMarks(name))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// FormatSection は Parse が読み込める形式でコレクション1つ分のテキストを生成します。
func FormatSection(name string, links []string) string {
	var b strings.Builder
	b.WriteString(HeadingMarker)
	b.WriteString(strings.TrimSpace(name))
	b.WriteString("\n")
	for _, link := range links {
		if !isLink(strings.TrimSpace(link)) {
			continue
		}
		b.WriteString(strings.TrimSpace(link))
		b.WriteString("\n")
	}
	return b.String()
}

func isLink(line string) bool {
	return strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://")
}

// foldMarks は NFKD 分解後に結合文字を取り除きます ("café" -> "cafe")。
func foldMarks(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// uniqueSlug は空や重複したスラッグを出力ファイルが衝突しない形に補正します。
// 補正後の "<slug>-N" も既出であれば N を進めます。
func uniqueSlug(slug string, position int, seen map[string]bool) string {
	if slug == "" {
		slug = fallbackSlugPrefix + "-" + strconv.Itoa(position)
	}
	candidate := slug
	for n := 2; seen[candidate]; n++ {
		candidate = slug + "-" + strconv.Itoa(n)
	}
	seen[candidate] = true
	return candidate
}
