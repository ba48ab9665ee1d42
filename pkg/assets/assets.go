package assets

import (
	_ "embed"
	"fmt"
	"os"
)

// StylesheetName は出力ディレクトリに配置するスタイルシートのファイル名です。
const StylesheetName = "style.css"

//go:embed style.css
var defaultStylesheet []byte

// DefaultStylesheet は組み込みのスタイルシートを返します。
func DefaultStylesheet() []byte {
	out := make([]byte, len(defaultStylesheet))
	copy(out, defaultStylesheet)
	return out
}

// Stylesheet は path のファイル内容をそのまま返します。path が空の場合は組み込みのスタイルシートを返します。
func Stylesheet(path string) ([]byte, error) {
	if path == "" {
		return DefaultStylesheet(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("スタイルシートの読み込みに失敗しました (%s): %w", path, err)
	}
	return data, nil
}
