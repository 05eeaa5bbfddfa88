package extract

import (
	"errors"
	"sync"

	"github.com/John-Robertt/reprompt/internal/page"
)

// fakeElement / fakeDoc 实现窄查询接口，便于构造“查询抛错”等真实页面难以复现的情况。
type fakeElement struct {
	text  string
	attrs map[string]string
}

func (e fakeElement) Text() string { return e.text }

func (e fakeElement) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

type fakeDoc struct {
	title   string
	byQuery map[string][]page.Element
	failing map[string]bool
	panicOn string

	mu      sync.Mutex
	queries []string
}

var errMalformed = errors.New("malformed selector")

func (d *fakeDoc) record(q string) {
	d.mu.Lock()
	d.queries = append(d.queries, q)
	d.mu.Unlock()
}

func (d *fakeDoc) QueryFirst(q string) (page.Element, error) {
	d.record(q)
	if q == d.panicOn {
		panic("document exploded")
	}
	if d.failing[q] {
		return nil, errMalformed
	}
	els := d.byQuery[q]
	if len(els) == 0 {
		return nil, nil
	}
	return els[0], nil
}

func (d *fakeDoc) QueryAll(q string) ([]page.Element, error) {
	d.record(q)
	if d.failing[q] {
		return nil, errMalformed
	}
	return d.byQuery[q], nil
}

func (d *fakeDoc) Title() string { return d.title }
