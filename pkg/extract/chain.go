package extract

import "strings"

// Candidate は値の候補を1つ生成するステップです。
type Candidate func() string

// FirstNonEmpty は候補を優先順に評価し、空白以外を含む最初の結果を返します。
// 以降の候補は評価されません。すべて空なら空文字を返します。
func FirstNonEmpty(candidates ...Candidate) string {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if v := strings.TrimSpace(c()); v != "" {
			return v
		}
	}
	return ""
}

// Static は固定値を返す候補です。
func Static(v string) Candidate {
	return func() string { return v }
}
