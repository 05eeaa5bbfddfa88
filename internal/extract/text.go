package extract

import (
	"strings"

	"github.com/John-Robertt/reprompt/internal/page"
)

// NormalizeText 返回元素去掉首尾空白的文本；文本为空时回退 alt 属性（图片类元素）。
func NormalizeText(el page.Element) string {
	if el == nil {
		return ""
	}
	if t := strings.TrimSpace(el.Text()); t != "" {
		return t
	}
	alt, _ := el.Attr("alt")
	return strings.TrimSpace(alt)
}

// mediaSource 返回媒体元素的图片地址：poster > src > 普通文本。
func mediaSource(el page.Element) string {
	if el == nil {
		return ""
	}
	for _, name := range []string{"poster", "src"} {
		if v, ok := el.Attr(name); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return NormalizeText(el)
}
