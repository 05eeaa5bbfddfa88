package selector

import (
	"fmt"
	"strings"

	"github.com/John-Robertt/reprompt/internal/domain"
)

// Field 是可提取的记录字段名。
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldThumbnail   Field = "thumbnail"
	FieldDuration    Field = "duration"
	FieldViews       Field = "views"
	FieldAuthor      Field = "author"
)

// Fields 返回全部字段，顺序即提取顺序。
func Fields() []Field {
	return []Field{FieldTitle, FieldDescription, FieldThumbnail, FieldDuration, FieldViews, FieldAuthor}
}

func parseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Fields() {
		if k == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("未知字段：%q", s)
}

// Catalog 是只读的选择器目录：platform -> field -> 按优先级排序的查询。
//
// 约束：
// - 构造后不可变；对外只返回副本
// - 同一字段的查询按顺序尝试，不可互换
type Catalog struct {
	sets map[domain.Platform]map[Field][]string
}

// New 校验并构造 Catalog。平台必须是有专用选择器的平台，查询列表不能为空，单个查询不能为空白。
func New(sets map[domain.Platform]map[Field][]string) (Catalog, error) {
	out := make(map[domain.Platform]map[Field][]string, len(sets))
	for p, fields := range sets {
		if !p.Supported() {
			return Catalog{}, fmt.Errorf("平台 %q 不支持专用选择器", p)
		}
		m := make(map[Field][]string, len(fields))
		for f, qs := range fields {
			if _, err := parseField(string(f)); err != nil {
				return Catalog{}, err
			}
			if len(qs) == 0 {
				return Catalog{}, fmt.Errorf("%s.%s 的选择器列表为空", p, f)
			}
			cp := make([]string, 0, len(qs))
			for _, q := range qs {
				q = strings.TrimSpace(q)
				if q == "" {
					return Catalog{}, fmt.Errorf("%s.%s 含空白选择器", p, f)
				}
				cp = append(cp, q)
			}
			m[f] = cp
		}
		out[p] = m
	}
	return Catalog{sets: out}, nil
}

// Queries 返回 platform/field 的查询副本；没有配置时返回 nil。
func (c Catalog) Queries(p domain.Platform, f Field) []string {
	qs := c.sets[p][f]
	if len(qs) == 0 {
		return nil
	}
	return append([]string(nil), qs...)
}

// FieldsFor 返回该平台配置了查询的字段（按 Fields() 的顺序）。
func (c Catalog) FieldsFor(p domain.Platform) []Field {
	m := c.sets[p]
	if len(m) == 0 {
		return nil
	}
	out := make([]Field, 0, len(m))
	for _, f := range Fields() {
		if len(m[f]) > 0 {
			out = append(out, f)
		}
	}
	return out
}

// Has 表示该平台是否有任何选择器。
func (c Catalog) Has(p domain.Platform) bool {
	return len(c.sets[p]) > 0
}

// Merge 返回一个新 Catalog：override 中出现的 platform/field 整体替换原列表，其余保持不变。
func (c Catalog) Merge(override Catalog) Catalog {
	out := make(map[domain.Platform]map[Field][]string, len(c.sets))
	for p, fields := range c.sets {
		m := make(map[Field][]string, len(fields))
		for f, qs := range fields {
			m[f] = qs
		}
		out[p] = m
	}
	for p, fields := range override.sets {
		m, ok := out[p]
		if !ok {
			m = make(map[Field][]string, len(fields))
			out[p] = m
		}
		for f, qs := range fields {
			m[f] = qs
		}
	}
	return Catalog{sets: out}
}
