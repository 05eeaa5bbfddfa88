package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/reprompt/internal/config"
	"github.com/John-Robertt/reprompt/internal/controller"
	"github.com/John-Robertt/reprompt/internal/domain"
	"github.com/John-Robertt/reprompt/internal/extract"
	"github.com/John-Robertt/reprompt/internal/host"
	"github.com/John-Robertt/reprompt/internal/infra/fsx"
	"github.com/John-Robertt/reprompt/internal/infra/httpx"
	"github.com/John-Robertt/reprompt/internal/messenger"
	"github.com/John-Robertt/reprompt/internal/page"
	"github.com/John-Robertt/reprompt/internal/pagectx"
	"github.com/John-Robertt/reprompt/internal/selector"
)

type scanOptions struct {
	url         string
	htmlPath    string
	outPath     string
	preinstall  bool
	maxWaitMS   int
	maxWaitSet  bool
	interactive bool
}

func newScanCmd(g *globalFlags) *cobra.Command {
	opts := scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan <url>",
		Short: "Open the page in a tab and request video info extraction from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.url = strings.TrimSpace(args[0])
			opts.maxWaitSet = cmd.Flags().Changed("max-wait")
			opts.interactive = isTTY(os.Stdout)

			eff, err := g.load(cmd, func(a *config.CLIArgs) {
				a.MaxWaitMS = opts.maxWaitMS
				a.MaxWaitSet = opts.maxWaitSet
			})
			if err != nil {
				return err
			}
			cat, err := config.LoadCatalog(eff)
			if err != nil {
				return &exitError{code: 2, msg: err.Error()}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			logger := newLogger(eff.LogLevel, os.Stderr)
			var obs messenger.Observer
			if isTTY(os.Stderr) {
				obs = newProgress(os.Stderr)
			}
			if code := runScan(ctx, opts, eff, cat, logger, obs, cmd.OutOrStdout(), cmd.ErrOrStderr()); code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.htmlPath, "html", "", "read the page HTML from this file instead of loading the URL")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "also write the response JSON to this file")
	cmd.Flags().BoolVar(&opts.preinstall, "preinstalled", false, "start with the content script already listening in the tab")
	cmd.Flags().IntVar(&opts.maxWaitMS, "max-wait", config.DefaultMaxWaitMS, "content readiness wait in milliseconds")
	return cmd
}

// session 把宿主、页面上下文监听器与控制端协议装配在一起。
type session struct {
	browser   *host.Browser
	listener  *pagectx.Listener
	messenger *messenger.Messenger
}

func newSession(eff config.EffectiveConfig, cat selector.Catalog, logger *slog.Logger, obs messenger.Observer) (*session, error) {
	ex := &extract.Extractor{Catalog: cat, PollInterval: eff.PollInterval, Logger: logger}
	l := &pagectx.Listener{Extractor: ex, MaxWait: eff.MaxWait, Logger: logger}

	b := host.NewBrowser(logger)
	if err := b.RegisterScript(eff.InjectResource, func(p page.Page) host.Handler { return l.Bind(p) }); err != nil {
		return nil, err
	}
	m := &messenger.Messenger{
		Transport:   b,
		Injector:    b,
		Resource:    eff.InjectResource,
		InjectDelay: eff.InjectDelay,
		Observer:    obs,
		Logger:      logger,
	}
	return &session{browser: b, listener: l, messenger: m}, nil
}

func loadHTML(ctx context.Context, opts scanOptions, eff config.EffectiveConfig) ([]byte, error) {
	if opts.htmlPath != "" {
		return page.ReadFile(opts.htmlPath)
	}
	c, err := httpx.NewPageClient(eff.ProxyURL)
	if err != nil {
		return nil, err
	}
	return page.Fetch(ctx, c, opts.url)
}

// runScan 返回进程退出码：0 成功，1 提取失败，2 页面无法加载或装配失败。
//
// 输出契约：stdout 非 TTY 时只输出一个 Response JSON；错误文本与日志走 stderr。
func runScan(ctx context.Context, opts scanOptions, eff config.EffectiveConfig, cat selector.Catalog, logger *slog.Logger, obs messenger.Observer, stdout, stderr io.Writer) int {
	if opts.url == "" {
		fmt.Fprintln(stderr, controller.ErrNoTabURL)
		return 2
	}
	html, err := loadHTML(ctx, opts, eff)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load page: %v\n", err)
		return 2
	}
	doc, err := page.ParseHTML(html)
	if err != nil {
		fmt.Fprintf(stderr, "failed to parse page: %v\n", err)
		return 2
	}

	s, err := newSession(eff, cat, logger, obs)
	if err != nil {
		fmt.Fprintf(stderr, "failed to set up session: %v\n", err)
		return 2
	}
	defer s.browser.Close()

	tab := s.browser.Open(opts.url, doc)
	if opts.preinstall {
		tab.Install(s.listener.Bind(tab))
	}

	ctrl := controller.New(s.messenger)
	ctrl.CheckTab(tab.URL())
	out := ctrl.Parse(ctx, tab.ID(), tab.URL())

	resp := out.Response()
	if opts.outPath != "" {
		b, err := json.MarshalIndent(resp, "", "  ")
		if err == nil {
			err = fsx.WriteFile(opts.outPath, append(b, '\n'))
		}
		if err != nil {
			fmt.Fprintf(stderr, "failed to write %s: %v\n", opts.outPath, err)
		}
	}

	if opts.interactive {
		if r, ok := ctrl.Result(); ok {
			emitSummary(stdout, r)
		}
	} else {
		_ = json.NewEncoder(stdout).Encode(resp)
	}
	if !out.OK() {
		fmt.Fprintln(stderr, ctrl.ErrorText())
		return 1
	}
	return 0
}

func emitSummary(w io.Writer, r domain.VideoRecord) {
	fmt.Fprintf(w, "Title:       %s\n", r.Title)
	if r.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", truncate(r.Description, 200))
	}
	fmt.Fprintf(w, "Platform:    %s\n", strings.ToUpper(string(r.Platform)))
	for _, kv := range [][2]string{
		{"Author:      ", r.Author},
		{"Duration:    ", r.Duration},
		{"Views:       ", r.Views},
		{"Thumbnail:   ", r.Thumbnail},
	} {
		if kv[1] != "" {
			fmt.Fprintf(w, "%s%s\n", kv[0], kv[1])
		}
	}
	fmt.Fprintf(w, "URL:         %s\n", r.URL)
}

// truncate 按 rune 截断，超出部分用 "..." 表示。
func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + "..."
}
