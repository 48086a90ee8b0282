//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vlt

import (
	"errors"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/active"
	"github.com/e-gun/ScreeningGoServer/internal/str"
	"github.com/e-gun/ScreeningGoServer/internal/tags"
	"github.com/patrickmn/go-cache"
	"sync"
	"time"
)

//
// THREAD SAFE INFRASTRUCTURE: TTL CACHE + PER-USER MUTEX
//

var (
	ErrNoSession = errors.New("no active learning session for this user")
)

// UserState - everything the server keeps for one user id
type UserState struct {
	mtx    sync.Mutex
	refs   int // guarded by the vault's mutex
	Prefs  str.ServerSession
	Active *active.Session
	Texts  *tags.Resolver // the documents behind the rows of Active
}

// SessionVault - there should be only one of these; and it contains all the sessions. Entries expire after the
// TTL unless a request touches them.
type SessionVault struct {
	mtx   sync.Mutex
	cache *cache.Cache
	busy  map[string]*UserState // entries inside With(); they outlive an eviction
	ttl   time.Duration
	mkdef func(id string) str.ServerSession
}

// MakeSessionVault - called only once by the server; mkdef fills in the preferences of a new user
func MakeSessionVault(ttl time.Duration, janitor time.Duration, mkdef func(id string) str.ServerSession) *SessionVault {
	const (
		EVICT = "SessionVault evicted '%s'"
	)
	c := cache.New(ttl, janitor)
	c.OnEvicted(func(id string, _ interface{}) {
		Msg.PEEK(fmt.Sprintf(EVICT, id))
	})
	return &SessionVault{cache: c, busy: make(map[string]*UserState), ttl: ttl, mkdef: mkdef}
}

// lookup - the cached entry, else one that a round is still holding; sv.mtx must be held
func (sv *SessionVault) lookup(id string) (*UserState, bool) {
	if v, ok := sv.cache.Get(id); ok {
		return v.(*UserState), true
	}
	us, ok := sv.busy[id]
	return us, ok
}

// fetch - the entry for id, created if need be; refreshes the TTL
func (sv *SessionVault) fetch(id string) *UserState {
	sv.mtx.Lock()
	defer sv.mtx.Unlock()
	return sv.fetchlocked(id)
}

func (sv *SessionVault) fetchlocked(id string) *UserState {
	us, ok := sv.lookup(id)
	if !ok {
		us = &UserState{Prefs: sv.mkdef(id)}
	}
	sv.cache.Set(id, us, sv.ttl)
	return us
}

// acquire - fetch and mark busy in one step so that the janitor cannot split a user in two
func (sv *SessionVault) acquire(id string) *UserState {
	sv.mtx.Lock()
	defer sv.mtx.Unlock()
	us := sv.fetchlocked(id)
	us.refs++
	sv.busy[id] = us
	return us
}

func (sv *SessionVault) release(id string, us *UserState) {
	sv.mtx.Lock()
	defer sv.mtx.Unlock()
	us.refs--
	if us.refs == 0 && sv.busy[id] == us {
		delete(sv.busy, id)
	}
}

func (sv *SessionVault) InsertSess(s str.ServerSession) {
	us := sv.fetch(s.ID)
	us.mtx.Lock()
	defer us.mtx.Unlock()
	us.Prefs = s
}

// GetSess - the preferences of id; the defaults if id is unknown
func (sv *SessionVault) GetSess(id string) str.ServerSession {
	sv.mtx.Lock()
	us, ok := sv.lookup(id)
	sv.mtx.Unlock()
	if !ok {
		return sv.mkdef(id)
	}
	us.mtx.Lock()
	defer us.mtx.Unlock()
	return us.Prefs
}

func (sv *SessionVault) IsInVault(id string) bool {
	sv.mtx.Lock()
	defer sv.mtx.Unlock()
	_, ok := sv.lookup(id)
	return ok
}

// Delete - abandon everything held for id; a round still in flight finishes on the orphaned entry
func (sv *SessionVault) Delete(id string) {
	sv.mtx.Lock()
	defer sv.mtx.Unlock()
	sv.cache.Delete(id)
	delete(sv.busy, id)
}

func (sv *SessionVault) Count() int {
	return sv.cache.ItemCount()
}

// With - run fn while holding the lock of this one user: the rounds of a user are serialised while different
// users never contend. An entry that expires while a round holds it is still the one the next request gets.
func (sv *SessionVault) With(id string, fn func(us *UserState) error) error {
	us := sv.acquire(id)
	defer sv.release(id, us)
	us.mtx.Lock()
	defer us.mtx.Unlock()
	return fn(us)
}

// WithActive - With, but only if the user has an active learning session
func (sv *SessionVault) WithActive(id string, fn func(as *active.Session) error) error {
	return sv.With(id, func(us *UserState) error {
		if us.Active == nil {
			return ErrNoSession
		}
		return fn(us.Active)
	})
}
