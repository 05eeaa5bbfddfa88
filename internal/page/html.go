package page

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// HTMLDocument 用 goquery 承载一份已解析的 HTML 文档。
//
// 注意：goquery 不执行 CSS/JS，隐藏元素的文本同样可读。
type HTMLDocument struct {
	doc *goquery.Document
}

var _ Document = (*HTMLDocument)(nil)

// ParseHTML 解析 HTML 字节流。
func ParseHTML(html []byte) (*HTMLDocument, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &HTMLDocument{doc: doc}, nil
}

// MustParseHTML 供测试与内置页面使用；解析失败直接 panic。
func MustParseHTML(html string) *HTMLDocument {
	d, err := ParseHTML([]byte(html))
	if err != nil {
		panic(err)
	}
	return d
}

func (d *HTMLDocument) compile(selector string) (cascadia.Selector, error) {
	// goquery.Find 遇到非法选择器会静默返回空集合；这里先编译，把错误交给调用方。
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("非法选择器 %q：%w", selector, err)
	}
	return m, nil
}

func (d *HTMLDocument) QueryFirst(selector string) (Element, error) {
	m, err := d.compile(selector)
	if err != nil {
		return nil, err
	}
	s := d.doc.FindMatcher(m).First()
	if s.Length() == 0 {
		return nil, nil
	}
	return htmlElement{s: s}, nil
}

func (d *HTMLDocument) QueryAll(selector string) ([]Element, error) {
	m, err := d.compile(selector)
	if err != nil {
		return nil, err
	}
	var out []Element
	d.doc.FindMatcher(m).Each(func(_ int, s *goquery.Selection) {
		out = append(out, htmlElement{s: s})
	})
	return out, nil
}

func (d *HTMLDocument) Title() string {
	return strings.Join(strings.Fields(d.doc.Find("title").First().Text()), " ")
}

type htmlElement struct {
	s *goquery.Selection
}

func (e htmlElement) Text() string { return e.s.Text() }

func (e htmlElement) Attr(name string) (string, bool) { return e.s.Attr(name) }
