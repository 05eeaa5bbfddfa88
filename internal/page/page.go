package page

// Element 是文档中一个元素的只读视图。
type Element interface {
	// Text 返回元素的文本内容（未 trim）。
	Text() string
	// Attr 返回属性值；属性不存在时 ok=false。
	Attr(name string) (string, bool)
}

// Document 是页面文档树的窄查询接口。
//
// 约束：
// - 只读：实现不得因查询而改变文档
// - 查询语法非法时返回 error（而不是静默当作无匹配），由调用方决定如何降级
type Document interface {
	// QueryFirst 返回第一个匹配元素；无匹配时返回 (nil, nil)。
	QueryFirst(selector string) (Element, error)
	// QueryAll 按文档顺序返回全部匹配元素。
	QueryAll(selector string) ([]Element, error)
	// Title 返回文档标题（空白已折叠）。
	Title() string
}

// Page 是页面上下文能看到的“当前页面”：地址与实时文档。
// SPA 场景下两者都可能在两次调用之间变化。
type Page interface {
	URL() string
	Document() Document
}

// Static 是不会变化的页面快照。
type Static struct {
	Addr string
	Doc  Document
}

func (s Static) URL() string        { return s.Addr }
func (s Static) Document() Document { return s.Doc }
