package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-link-gallery/pkg/feed"
)

var feedFlags struct {
	url    string
	name   string
	limit  int
	append string
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "RSS/Atomフィードの記事リンクをリンクファイル形式で出力します",
	Long: `指定されたURLからRSSまたはAtomフィードを取得し、記事のリンクを "# 名前" で始まるセクションとして出力します。
--append を指定するとリンクファイルの末尾に追記します。`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		feedURL, err := ensureScheme(feedFlags.url)
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}

		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("HTTPクライアントの取得に失敗しました")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), overallTimeout(fetcher.Timeout()))
		defer cancel()

		parsedFeed, err := feed.NewParser(fetcher).FetchAndParse(ctx, feedURL)
		if err != nil {
			return fmt.Errorf("フィード解析の実行エラー: %w", err)
		}
		section := feed.ToSection(feedFlags.name, parsedFeed, feedFlags.limit)
		slog.Info("フィードを取得しました", "url", feedURL, "title", parsedFeed.Title, "items", len(parsedFeed.Items))

		if feedFlags.append == "" {
			fmt.Print(section)
			return nil
		}
		return appendSection(feedFlags.append, section)
	},
}

// appendSection はリンクファイルの末尾に空行を挟んでセクションを追記します。
func appendSection(path, section string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("リンクファイルを開けませんでした (%s): %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString("\n" + section); err != nil {
		return fmt.Errorf("リンクファイルへの追記に失敗しました (%s): %w", path, err)
	}
	slog.Info("リンクファイルに追記しました", "path", path)
	return nil
}

func init() {
	feedCmd.Flags().StringVarP(&feedFlags.url, "url", "u", "", "解析対象のフィード (RSS/Atom) URL")
	feedCmd.Flags().StringVarP(&feedFlags.name, "name", "n", "", "コレクション名 (省略時はフィードのタイトル)")
	feedCmd.Flags().IntVar(&feedFlags.limit, "limit", 0, "取り込む記事の最大件数 (0 は無制限)")
	feedCmd.Flags().StringVar(&feedFlags.append, "append", "", "追記先のリンクファイル")
	_ = feedCmd.MarkFlagRequired("url")
}
