//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vlt

import (
	"context"
	"fmt"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/singleflight"
	"strings"
	"sync"
)

// ModelKey - what a trained model is built from
type ModelKey struct {
	Corpora string // sorted, comma separated
	Model   string
	Dim     int
	Extra   string // e.g. the space and topic count of a projection
}

// NewModelKey - the corpora are sorted so that {"b","a"} and {"a","b"} name the same model
func NewModelKey(corpora []string, model string, dim int) ModelKey {
	cc := slices.Clone(corpora)
	slices.Sort(cc)
	cc = slices.Compact(cc)
	return ModelKey{Corpora: strings.Join(cc, ","), Model: model, Dim: dim}
}

// With - a derived key
func (k ModelKey) With(extra string) ModelKey {
	k.Extra = extra
	return k
}

func (k ModelKey) String() string {
	s := fmt.Sprintf("%s|%s|%d", k.Corpora, k.Model, k.Dim)
	if k.Extra != "" {
		s += "|" + k.Extra
	}
	return s
}

// Registry - immutable handles keyed by ModelKey. A retrain swaps the handle; it never alters one that a session
// may still be reading.
type Registry[T any] struct {
	mtx sync.RWMutex
	m   map[ModelKey]T
	sf  singleflight.Group
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{m: make(map[ModelKey]T)}
}

func (r *Registry[T]) Get(k ModelKey) (T, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	v, ok := r.m[k]
	return v, ok
}

func (r *Registry[T]) Put(k ModelKey, v T) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.m[k] = v
}

func (r *Registry[T]) Delete(k ModelKey) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	delete(r.m, k)
}

// Keys - sorted by their string form
func (r *Registry[T]) Keys() []ModelKey {
	r.mtx.RLock()
	kk := maps.Keys(r.m)
	r.mtx.RUnlock()
	slices.SortFunc(kk, func(a, b ModelKey) int {
		return strings.Compare(a.String(), b.String())
	})
	return kk
}

// GetOrBuild - the stored handle, else the result of build; concurrent callers for the same key share one build.
// A caller whose ctx ends stops waiting; the build itself carries on for the others.
func (r *Registry[T]) GetOrBuild(ctx context.Context, k ModelKey, build func() (T, error)) (T, error) {
	if v, ok := r.Get(k); ok {
		return v, nil
	}

	ch := r.sf.DoChan(k.String(), func() (interface{}, error) {
		if v, ok := r.Get(k); ok {
			return v, nil
		}
		v, err := build()
		if err != nil {
			return v, err
		}
		r.Put(k, v)
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	}
}

// Rebuild - build and swap in a new handle even if one exists
func (r *Registry[T]) Rebuild(k ModelKey, build func() (T, error)) (T, error) {
	v, err, _ := r.sf.Do(k.String(), func() (interface{}, error) {
		v, err := build()
		if err != nil {
			return v, err
		}
		r.Put(k, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, _ := v.(T)
	return t, nil
}
