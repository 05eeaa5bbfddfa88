package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/John-Robertt/reprompt/internal/config"
	"github.com/John-Robertt/reprompt/internal/controller"
	"github.com/John-Robertt/reprompt/internal/domain"
	"github.com/John-Robertt/reprompt/internal/selector"
)

func testConfig() config.EffectiveConfig {
	return config.EffectiveConfig{
		MaxWait:        0,
		PollInterval:   10 * time.Millisecond,
		InjectDelay:    time.Millisecond,
		InjectResource: config.DefaultResource,
		LogLevel:       "error",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join("..", "..", "internal", "extract", "testdata", name)
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("fixture 不存在：%v", err)
	}
	return p
}

func TestRunScan_NoTTY_StdoutOnlyResponseJSON(t *testing.T) {
	// stdout 非 TTY 时只能输出一个 Response JSON；提示与日志走 stderr。
	outPath := filepath.Join(t.TempDir(), "result.json")
	opts := scanOptions{
		url:      "https://www.youtube.com/watch?v=abc",
		htmlPath: fixture(t, "youtube_watch.html"),
		outPath:  outPath,
	}
	var stdout, stderr bytes.Buffer
	code := runScan(context.Background(), opts, testConfig(), selector.Default(), discardLogger(), nil, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("期望退出码 0，实际 %d (stderr=%s)", code, stderr.String())
	}

	var resp domain.Response
	dec := json.NewDecoder(&stdout)
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("stdout 不是合法 JSON：%v", err)
	}
	if dec.More() {
		t.Fatalf("stdout 只能包含一个 JSON")
	}
	if !resp.Success || resp.Data == nil || resp.Data.Title != "Cat Piano Compilation" {
		t.Fatalf("应答不符合预期：%+v", resp)
	}

	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("--out 文件未写出：%v", err)
	}
	var saved domain.Response
	if err := json.Unmarshal(b, &saved); err != nil || saved.Data == nil || saved.Data.Title != resp.Data.Title {
		t.Fatalf("--out 内容不符合预期：%s (err=%v)", b, err)
	}
}

func TestRunScan_UnsupportedPageShowsHint(t *testing.T) {
	htmlPath := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(htmlPath, []byte("<html><body><p>nothing here</p></body></html>"), 0o644); err != nil {
		t.Fatalf("写文件失败：%v", err)
	}
	opts := scanOptions{url: "https://example.com/x", htmlPath: htmlPath, preinstall: true}
	var stdout, stderr bytes.Buffer
	code := runScan(context.Background(), opts, testConfig(), selector.Default(), discardLogger(), nil, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("期望退出码 1，实际 %d", code)
	}
	if !strings.Contains(stderr.String(), controller.UnsupportedHint) {
		t.Fatalf("stderr 应包含导航提示，实际 %q", stderr.String())
	}
	var resp domain.Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("stdout 不是合法 JSON：%v", err)
	}
	if resp.Success || resp.Error != "No video content found on this unknown page" {
		t.Fatalf("应答不符合预期：%+v", resp)
	}
}

func TestRunScan_MissingHTMLFile(t *testing.T) {
	opts := scanOptions{url: "https://youtube.com/watch?v=1", htmlPath: filepath.Join(t.TempDir(), "none.html")}
	var stdout, stderr bytes.Buffer
	if code := runScan(context.Background(), opts, testConfig(), selector.Default(), discardLogger(), nil, &stdout, &stderr); code != 2 {
		t.Fatalf("期望退出码 2，实际 %d", code)
	}
	if stdout.Len() != 0 {
		t.Fatalf("页面加载失败时 stdout 应为空，实际 %q", stdout.String())
	}
}

func TestEmitSummary_TruncatesDescription(t *testing.T) {
	r := domain.VideoRecord{
		Title:       "t",
		Description: strings.Repeat("描", 250),
		URL:         "u",
		Platform:    domain.PlatformInstagram,
	}
	var buf bytes.Buffer
	emitSummary(&buf, r)
	out := buf.String()
	if !strings.Contains(out, strings.Repeat("描", 200)+"...") {
		t.Fatalf("描述应截断到 200 个字符并加省略号：%q", out)
	}
	if strings.Contains(out, strings.Repeat("描", 201)) {
		t.Fatalf("描述不应超过 200 个字符")
	}
	if !strings.Contains(out, "INSTAGRAM") {
		t.Fatalf("平台应大写显示：%q", out)
	}
}

func TestProgress_WritesSteps(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf)
	p.OnDeliver(1, 1, errors.New("no receiver"))
	p.OnInject(1, "content.js", nil)
	got := buf.String()
	if !strings.Contains(got, "attempt=1: no receiver") || !strings.Contains(got, "inject content.js tab=1: ok") {
		t.Fatalf("进度输出不符合预期：%q", got)
	}
}
