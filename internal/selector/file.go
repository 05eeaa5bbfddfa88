package selector

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/reprompt/internal/domain"
)

// fileFormat 对应选择器覆盖文件：
//
//	youtube:
//	  title: ["h1.title", "h1"]
//	instagram:
//	  author: ["a.owner"]
type fileFormat map[string]map[string][]string

// Parse 解析 YAML 形式的选择器目录（通常只包含需要覆盖的条目）。
func Parse(b []byte) (Catalog, error) {
	var ff fileFormat
	dec := yaml.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&ff); err != nil {
		if errors.Is(err, io.EOF) {
			return Catalog{}, nil
		}
		return Catalog{}, err
	}
	sets := make(map[domain.Platform]map[Field][]string, len(ff))
	for ps, fields := range ff {
		p, err := domain.ParsePlatform(ps)
		if err != nil {
			return Catalog{}, err
		}
		m := make(map[Field][]string, len(fields))
		for fs, qs := range fields {
			f, err := parseField(fs)
			if err != nil {
				return Catalog{}, fmt.Errorf("%s: %w", ps, err)
			}
			m[f] = qs
		}
		sets[p] = m
	}
	return New(sets)
}

// LoadFile 读取覆盖文件并合并到 base 上。
func LoadFile(path string, base Catalog) (Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}
	override, err := Parse(b)
	if err != nil {
		return Catalog{}, fmt.Errorf("选择器文件 %q 无效：%w", path, err)
	}
	return base.Merge(override), nil
}

// Marshal 把目录渲染为 YAML；只输出 platforms 中的平台，字段按 Fields() 顺序。
func (c Catalog) Marshal(platforms ...domain.Platform) ([]byte, error) {
	if len(platforms) == 0 {
		platforms = domain.Platforms()
	}
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range platforms {
		if !c.Has(p) {
			continue
		}
		fields := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range c.FieldsFor(p) {
			seq := &yaml.Node{Kind: yaml.SequenceNode}
			for _, q := range c.Queries(p, f) {
				seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: q})
			}
			fields.Content = append(fields.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: string(f)}, seq)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: string(p)}, fields)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
