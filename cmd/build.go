package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/go-link-gallery/internal/pipeline"
	"github.com/shouni/go-link-gallery/pkg/config"
	"github.com/shouni/go-link-gallery/pkg/types"
)

// build コマンドのフラグ変数
var buildFlags struct {
	input      string
	output     string
	stylesheet string
	variant    string
	title      string
	delay      time.Duration
}

// applyBuildFlags は明示的に指定されたフラグだけを設定に上書きします。
func applyBuildFlags(cmd *cobra.Command, cfg config.Config) config.Config {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = buildFlags.input
	}
	if flags.Changed("output") {
		cfg.Output = buildFlags.output
	}
	if flags.Changed("stylesheet") {
		cfg.Stylesheet = buildFlags.stylesheet
	}
	if flags.Changed("variant") {
		cfg.Variant = types.Variant(strings.ToUpper(buildFlags.variant))
	}
	if flags.Changed("title") {
		cfg.SiteTitle = buildFlags.title
	}
	if flags.Changed("delay") {
		cfg.Delay = buildFlags.delay
	}
	return cfg
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "リンクファイルから静的なリンク集ページを生成します",
	Long: `リンクファイル (既定: links.md) を読み込み、各リンクのタイトル・説明・プレビュー画像を1件ずつ取得して、
トップページとコレクションごとのページを出力ディレクトリに書き出します。
取得に失敗したリンクもホスト名を使ったカードとして出力されます。`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := applyBuildFlags(cmd, globalConfig)

		// Ctrl+C で実行中の取得を打ち切る
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		builder, err := pipeline.New(cfg, slog.Default())
		if err != nil {
			return fmt.Errorf("ビルドの初期化エラー: %w", err)
		}

		start := time.Now()
		summary, err := builder.Run(ctx)
		if err != nil {
			slog.Error("ビルドに失敗しました", "error", err)
			return fmt.Errorf("ビルドの実行エラー: %w", err)
		}

		fmt.Println("--- ビルド結果 ---")
		fmt.Printf("コレクション: %d 件, リンク: %d 件 (取得失敗 %d 件)\n", summary.Collections, summary.Links, summary.Failures)
		for _, f := range summary.Files {
			fmt.Printf("  %s\n", f)
		}
		fmt.Printf("完了 (%s)\n", time.Since(start).Round(time.Millisecond))

		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildFlags.input, "input", "i", config.DefaultInput, "リンクファイルのパス")
	buildCmd.Flags().StringVarP(&buildFlags.output, "output", "o", config.DefaultOutput, "出力ディレクトリ")
	buildCmd.Flags().StringVarP(&buildFlags.stylesheet, "stylesheet", "s", "", "コピーするスタイルシート (省略時は組み込み)")
	buildCmd.Flags().StringVar(&buildFlags.variant, "variant", string(types.VariantA), "表示バリアント (A: URL表示とプレースホルダー画像, B: 説明文表示)")
	buildCmd.Flags().StringVar(&buildFlags.title, "title", config.DefaultSiteTitle, "サイトのタイトル")
	buildCmd.Flags().DurationVar(&buildFlags.delay, "delay", config.DefaultDelay, "各リンク取得後の待機時間")
}
