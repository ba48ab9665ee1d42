package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/go-link-gallery/internal/pipeline"
	"github.com/shouni/go-link-gallery/pkg/httpclient"
	"github.com/shouni/go-link-gallery/pkg/types"
)

var (
	inspectURL     string
	inspectVariant string
)

// 全体処理のタイムアウト: クライアントタイムアウトの2倍
const overallTimeoutFactor = 2

// overallTimeout はクライアントの実効タイムアウトから全体処理のタイムアウトを求めます。
func overallTimeout(clientTimeout time.Duration) time.Duration {
	if clientTimeout <= 0 {
		clientTimeout = httpclient.DefaultHTTPTimeout
	}
	return clientTimeout * overallTimeoutFactor
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "1つのURLからメタデータを取得して表示します",
	Long:  `build と同じ抽出処理で、指定されたURLのタイトル・説明・画像を取得して表示します。リンクファイルの確認に使います。`,
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		processedURL, err := ensureScheme(inspectURL)
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}

		cfg := globalConfig
		if cmd.Flags().Changed("variant") {
			cfg.Variant = types.Variant(strings.ToUpper(inspectVariant))
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("設定が不正です: %w", err)
		}

		extractor, err := pipeline.NewExtractor(cfg, slog.Default())
		if err != nil {
			return err
		}

		timeout := overallTimeout(cfg.Timeout())
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		slog.Debug("メタデータを取得します", "url", processedURL, "timeout", timeout)
		start := time.Now()
		meta := extractor.Extract(ctx, processedURL)

		fmt.Println("--- メタデータ ---")
		fmt.Printf("URL:         %s\n", meta.URL)
		fmt.Printf("タイトル:    %s\n", meta.Title)
		fmt.Printf("説明:        %s\n", meta.Description)
		fmt.Printf("画像:        %s\n", meta.Image)
		fmt.Printf("取得成功:    %t (%s)\n", meta.Success, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectURL, "url", "u", "", "取得対象のURL")
	inspectCmd.Flags().StringVar(&inspectVariant, "variant", "A", "抽出バリアント (A または B)")
	_ = inspectCmd.MarkFlagRequired("url")
}
