package page

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// maxPageBytes 限制单页读取量；视频页 HTML 很少超过几 MB。
const maxPageBytes = 16 << 20

// Fetch 用 GET 加载 pageURL 的 HTML（相当于在标签页中打开页面）。
func Fetch(ctx context.Context, c *http.Client, pageURL string) ([]byte, error) {
	if c == nil {
		return nil, errors.New("http client 不能为空")
	}
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, errors.New("pageURL 不能为空")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{URL: pageURL, StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}
	return readLimited(resp.Body, maxPageBytes)
}

// ErrPageTooLarge 表示页面超过读取上限；截断的 HTML 不能当作完整页面解析。
var ErrPageTooLarge = errors.New("page exceeds size limit")

// readLimited 多读一个字节来区分“恰好等于上限”与“超过上限”。
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrPageTooLarge, limit)
	}
	return b, nil
}

// ReadFile 读取本地保存的页面 HTML。
func ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, errors.New("html 为空")
	}
	return b, nil
}
