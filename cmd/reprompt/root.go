package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/John-Robertt/reprompt/internal/config"
)

type globalFlags struct {
	configPath string
	logLevel   string
	proxyURL   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "reprompt",
		Short:         "Scan video pages (YouTube, Instagram, generic) for title/description metadata",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default ./"+config.FileName+" if present)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "debug|info|warn|error")
	root.PersistentFlags().StringVar(&g.proxyURL, "proxy", "", "HTTP proxy used when loading pages")

	root.AddCommand(newScanCmd(g), newDetectCmd(), newSelectorsCmd(g))
	return root
}

// load 读取生效配置；flag 是否显式指定由 cobra 的 Changed 决定。
func (g *globalFlags) load(cmd *cobra.Command, extra func(*config.CLIArgs)) (config.EffectiveConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, &exitError{code: 2, msg: "读取当前目录失败：" + err.Error()}
	}
	args := config.CLIArgs{
		ConfigPath:  g.configPath,
		LogLevel:    g.logLevel,
		LogLevelSet: cmd.Flags().Changed("log-level"),
		ProxyURL:    g.proxyURL,
		ProxySet:    cmd.Flags().Changed("proxy"),
	}
	if extra != nil {
		extra(&args)
	}
	eff, err := config.LoadEffective(cwd, args, os.Getenv)
	if err != nil {
		return config.EffectiveConfig{}, &exitError{code: 2, msg: err.Error()}
	}
	return eff, nil
}

// newLogger 构造写到 w 的文本 logger；stdout 只留给结果输出。
func newLogger(level string, w io.Writer) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

func isTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
