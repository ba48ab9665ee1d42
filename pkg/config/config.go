package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shouni/go-link-gallery/pkg/types"
)

const (
	DefaultInput      = "links.md"
	DefaultOutput     = "dist"
	DefaultTimeoutSec = 10
	DefaultDelay      = 500 * time.Millisecond
	DefaultSiteTitle  = "Link Collections"
)

// Config はビルド全体の設定です。YAMLファイルとコマンドラインフラグから組み立てられます。
type Config struct {
	Input       string        `yaml:"input"`
	Output      string        `yaml:"output"`
	Stylesheet  string        `yaml:"stylesheet"` // 空の場合は組み込みのスタイルシート
	SiteTitle   string        `yaml:"site_title"`
	Variant     types.Variant `yaml:"variant"`
	Delay       time.Duration `yaml:"delay"`
	TimeoutSec  int           `yaml:"timeout_sec"`
	MaxRetries  uint64        `yaml:"max_retries"`
	UserAgent   string        `yaml:"user_agent"`
	Placeholder string        `yaml:"placeholder"` // %s にホスト名が入る画像URLの書式
}

// Default は既定値で埋めた Config を返します。
func Default() Config {
	return Config{
		Input:      DefaultInput,
		Output:     DefaultOutput,
		SiteTitle:  DefaultSiteTitle,
		Variant:    types.VariantA,
		Delay:      DefaultDelay,
		TimeoutSec: DefaultTimeoutSec,
	}
}

// Load は既定値に YAML ファイルの内容を上書きした Config を返します。
// path が空の場合は既定値をそのまま返します。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("設定ファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	if err := decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("設定ファイルの解析に失敗しました (%s): %w", path, err)
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	cfg.Variant = types.Variant(strings.ToUpper(string(cfg.Variant)))
	return nil
}

// Validate は設定値の整合性を検証します。
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Input) == "" {
		errs = append(errs, errors.New("入力ファイルが指定されていません"))
	}
	if strings.TrimSpace(c.Output) == "" {
		errs = append(errs, errors.New("出力ディレクトリが指定されていません"))
	}
	if !c.Variant.Valid() {
		errs = append(errs, fmt.Errorf("不明なバリアントです: %q (A または B を指定してください)", c.Variant))
	}
	if c.Delay < 0 {
		errs = append(errs, fmt.Errorf("待機時間は0以上である必要があります: %s", c.Delay))
	}
	if c.TimeoutSec < 0 {
		errs = append(errs, fmt.Errorf("タイムアウトは0以上である必要があります: %d", c.TimeoutSec))
	}
	if c.Placeholder != "" && strings.Count(c.Placeholder, "%s") != 1 {
		errs = append(errs, fmt.Errorf("placeholder には %%s を1つだけ含めてください: %q", c.Placeholder))
	}
	return errors.Join(errs...)
}

// Timeout はHTTPクライアントのタイムアウトを返します。0 は既定値 (DefaultTimeoutSec) を意味します。
func (c Config) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return DefaultTimeoutSec * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}
