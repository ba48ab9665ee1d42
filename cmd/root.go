package cmd

import (
	"fmt"
	"log/slog"
	"os"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-link-gallery/pkg/config"
	"github.com/shouni/go-link-gallery/pkg/httpclient"
)

// --- グローバル定数 ---

const (
	appName = "link-gallery"
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	ConfigPath string // --config 設定ファイル (YAML)
	TimeoutSec int    // --timeout タイムアウト
	MaxRetries uint64 // --max-retries 追加試行回数
}

var (
	Flags         AppFlags
	globalConfig  config.Config
	globalFetcher *httpclient.Client
)

// --- 初期化とロジック (clibaseへのコールバックとして利用) ---

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(
		&Flags.ConfigPath,
		"config",
		"",
		"設定ファイル (YAML) のパス",
	)
	rootCmd.PersistentFlags().IntVar(
		&Flags.TimeoutSec,
		"timeout",
		config.DefaultTimeoutSec,
		"HTTPリクエストのタイムアウト時間（秒）",
	)
	rootCmd.PersistentFlags().Uint64Var(
		&Flags.MaxRetries,
		"max-retries",
		0,
		"HTTPリクエストの追加試行回数 (0 の場合は1回のみ)",
	)
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// NOTE: clibaseの PersistentPreRunE チェーンにより、clibase.Flags.Verbose はこの関数実行前に設定済み
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if clibase.Flags.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// 既定値 < 設定ファイル < 明示されたフラグ
	cfg, err := config.Load(Flags.ConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutSec = Flags.TimeoutSec
	}
	if cmd.Flags().Changed("max-retries") {
		cfg.MaxRetries = Flags.MaxRetries
	}
	if cfg.TimeoutSec < 0 {
		return fmt.Errorf("タイムアウトは0以上である必要があります: %d", cfg.TimeoutSec)
	}
	globalConfig = cfg

	slog.Debug("HTTPクライアントを設定しました",
		"timeout", cfg.Timeout(),
		"max_retries", cfg.MaxRetries,
		"config", Flags.ConfigPath,
	)

	// 共有フェッチャーの初期化 (フィード用: 文字コードの判定は gofeed に任せる)
	globalFetcher = httpclient.New(
		cfg.Timeout(),
		httpclient.WithMaxRetries(cfg.MaxRetries),
		httpclient.WithUserAgent(cfg.UserAgent),
		httpclient.WithRawBody(),
	)

	return nil
}

// GetGlobalFetcher は、初期化されたフェッチャーを返す関数 (DIの代わり)
func GetGlobalFetcher() *httpclient.Client {
	return globalFetcher
}

// --- エントリポイント ---

// Execute は、clibase を使ってルートコマンドを組み立てて実行します。
// エラー時の os.Exit(1) は clibase.Execute の中で処理されます。
func Execute() {
	clibase.Execute(
		appName,
		addAppPersistentFlags,
		initAppPreRunE,
		buildCmd,
		inspectCmd,
		feedCmd,
	)
}
