//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tags

import (
	"sync"
)

// Resolver - tag to document text; filled once by the corpus loader and then only read
type Resolver struct {
	mtx   sync.RWMutex
	texts map[Tag]string
}

func NewResolver() *Resolver {
	return &Resolver{texts: make(map[Tag]string)}
}

func (r *Resolver) Add(t Tag, text string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.texts[t] = text
}

// Text - the abstract for an abstract tag, the raw body otherwise
func (r *Resolver) Text(t Tag) (string, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	s, ok := r.texts[t]
	return s, ok
}

// TextOf - Text for a tag string
func (r *Resolver) TextOf(s string) (string, bool) {
	t, err := Parse(s)
	if err != nil {
		return "", false
	}
	return r.Text(t)
}

func (r *Resolver) Len() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return len(r.texts)
}
