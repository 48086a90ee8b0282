//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vlt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/e-gun/ScreeningGoServer/internal/str"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultwait = 2 * time.Second
	defaulttick = 10 * time.Millisecond
)

func mkdef(id string) str.ServerSession {
	return str.ServerSession{ID: id, BatchSize: 4, Space: "topic"}
}

func TestSessionVaultBasics(t *testing.T) {
	sv := MakeSessionVault(time.Minute, time.Minute, mkdef)
	assert.False(t, sv.IsInVault("a"))

	// unknown ids get the defaults without being stored
	s := sv.GetSess("a")
	assert.Equal(t, 4, s.BatchSize)
	assert.False(t, sv.IsInVault("a"))

	s.BatchSize = 9
	sv.InsertSess(s)
	assert.True(t, sv.IsInVault("a"))
	assert.Equal(t, 9, sv.GetSess("a").BatchSize)
	assert.Equal(t, 1, sv.Count())

	sv.Delete("a")
	assert.False(t, sv.IsInVault("a"))
	assert.Equal(t, 4, sv.GetSess("a").BatchSize)
}

func TestSessionVaultExpires(t *testing.T) {
	sv := MakeSessionVault(20*time.Millisecond, 5*time.Millisecond, mkdef)
	sv.InsertSess(mkdef("gone"))
	assert.Eventually(t, func() bool {
		return !sv.IsInVault("gone")
	}, defaultwait, defaulttick)
}

func TestWithActiveNeedsASession(t *testing.T) {
	sv := MakeSessionVault(time.Minute, time.Minute, mkdef)
	err := sv.WithActive("nobody", nil)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestWithSerialisesOneUser(t *testing.T) {
	sv := MakeSessionVault(time.Minute, time.Minute, mkdef)

	var inside int32
	var overlap int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sv.With("same", func(us *UserState) error {
				if atomic.AddInt32(&inside, 1) > 1 {
					atomic.StoreInt32(&overlap, 1)
				}
				time.Sleep(time.Millisecond)
				us.Prefs.TopN++
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Zero(t, atomic.LoadInt32(&overlap))
	assert.Equal(t, 20, sv.GetSess("same").TopN)
}

func TestWithOutlivesEviction(t *testing.T) {
	sv := MakeSessionVault(time.Minute, time.Minute, mkdef)

	var held *UserState
	err := sv.With("u", func(us *UserState) error {
		held = us
		us.Prefs.TopN = 7
		// what the janitor does to an expired entry
		sv.cache.Delete("u")
		assert.True(t, sv.IsInVault("u"))
		assert.Same(t, us, sv.fetch("u"))
		return nil
	})
	require.NoError(t, err)

	assert.Empty(t, sv.busy)
	assert.Equal(t, 7, sv.GetSess("u").TopN)
	_ = sv.With("u", func(us *UserState) error {
		assert.Same(t, held, us)
		return nil
	})
}

func TestDeleteOrphansARoundInFlight(t *testing.T) {
	sv := MakeSessionVault(time.Minute, time.Minute, mkdef)
	_ = sv.With("u", func(us *UserState) error {
		us.Prefs.TopN = 7
		sv.Delete("u")
		assert.False(t, sv.IsInVault("u"))
		return nil
	})
	assert.Empty(t, sv.busy)
	assert.Equal(t, mkdef("u").TopN, sv.GetSess("u").TopN)
}

func TestWithDoesNotBlockOtherUsers(t *testing.T) {
	sv := MakeSessionVault(time.Minute, time.Minute, mkdef)
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = sv.With("slow", func(us *UserState) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	done := make(chan struct{})
	go func() {
		_ = sv.With("fast", func(us *UserState) error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(defaultwait):
		t.Fatal("a second user waited on the first")
	}
	close(release)
}

func TestModelKey(t *testing.T) {
	a := NewModelKey([]string{"b", "a", "b"}, "w2v", 100)
	b := NewModelKey([]string{"a", "b"}, "w2v", 100)
	assert.Equal(t, a, b)
	assert.Equal(t, "a,b|w2v|100", a.String())
	assert.Equal(t, "a,b|w2v|100|topic-20", a.With("topic-20").String())
	assert.NotEqual(t, a, a.With("x"))
}

func TestRegistryBuildsOnce(t *testing.T) {
	r := NewRegistry[*int]()
	k := NewModelKey([]string{"a"}, "w2v", 10)

	var builds int32
	gate := make(chan struct{})
	build := func() (*int, error) {
		atomic.AddInt32(&builds, 1)
		<-gate
		v := 7
		return &v, nil
	}

	var wg sync.WaitGroup
	results := make([]*int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := r.GetOrBuild(context.Background(), k, build)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
	for _, v := range results {
		assert.Same(t, results[0], v)
	}

	got, ok := r.Get(k)
	assert.True(t, ok)
	assert.Same(t, results[0], got)
	assert.Equal(t, []ModelKey{k}, r.Keys())
}

func TestRegistryRebuildSwapsTheHandle(t *testing.T) {
	r := NewRegistry[*int]()
	k := NewModelKey([]string{"a"}, "w2v", 10)
	one, two := 1, 2
	r.Put(k, &one)

	held, _ := r.Get(k)
	v, err := r.Rebuild(k, func() (*int, error) { return &two, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, *v)

	// the old handle is untouched
	assert.Equal(t, 1, *held)
	now, _ := r.Get(k)
	assert.Equal(t, 2, *now)
}

func TestRegistryBuildErrorsAreNotStored(t *testing.T) {
	r := NewRegistry[*int]()
	k := NewModelKey([]string{"a"}, "w2v", 10)
	boom := errors.New("boom")
	_, err := r.GetOrBuild(context.Background(), k, func() (*int, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	_, ok := r.Get(k)
	assert.False(t, ok)
}

func TestRegistryHonoursContext(t *testing.T) {
	r := NewRegistry[*int]()
	k := NewModelKey([]string{"a"}, "w2v", 10)
	gate := make(chan struct{})
	defer close(gate)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.GetOrBuild(ctx, k, func() (*int, error) {
		<-gate
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJobHub(t *testing.T) {
	h := BuildJobHub(time.Minute)
	go h.Run()

	cancelled := make(chan struct{})
	h.Insert(JobInfo{ID: "j1", User: "u", Kind: "train", Launched: time.Now(), CancelFnc: func() { close(cancelled) }})
	h.Insert(JobInfo{ID: "j2", User: "v", Kind: "cluster", Launched: time.Now()})

	ji := h.Fetch("j1")
	assert.True(t, ji.Exists)
	assert.Equal(t, "train", ji.Kind)
	assert.False(t, h.Fetch("nope").Exists)

	h.Progress("j1", 10, 4)
	h.Summary("j1", "Training w2v")
	assert.Eventually(t, func() bool {
		ji := h.Fetch("j1")
		return ji.Total == 10 && ji.Remain == 4 && ji.Summary == "Training w2v"
	}, defaultwait, defaulttick)

	assert.Len(t, h.List("u"), 1)

	h.CancelAll("u")
	select {
	case <-cancelled:
	case <-time.After(defaultwait):
		t.Fatal("job was not cancelled")
	}

	h.Done("j2", "payload", nil)
	ji = h.Fetch("j2")
	assert.True(t, ji.Done)
	assert.Equal(t, "payload", ji.Result)

	// updates after the end are ignored
	h.Progress("j2", 10, 9)
	h.Done("j1", nil, errors.New("stopped"))
	assert.Equal(t, 0, h.Fetch("j2").Remain)
	assert.Equal(t, "stopped", h.Fetch("j1").Err)

	h.Delete("j2")
	assert.False(t, h.Fetch("j2").Exists)
}

func TestJobHubSweepsFinishedJobs(t *testing.T) {
	h := BuildJobHub(10 * time.Millisecond)
	go h.Run()
	h.Insert(JobInfo{ID: "old", Launched: time.Now()})
	h.Done("old", nil, nil)
	assert.Eventually(t, func() bool {
		return !h.Fetch("old").Exists
	}, 3*time.Second, 50*time.Millisecond)
}

func TestFormatPoll(t *testing.T) {
	s := formatpoll(PollData{TotalWrk: 10, Remain: 7, Msg: "Training", Elapsed: "1.0s"})
	assert.Contains(t, s, `<span class="progress">30%</span>`)

	s = formatpoll(PollData{Msg: "Clustering", Elapsed: "0.2s", Done: true, Extra: "<bad>"})
	assert.Contains(t, s, "Done")
	assert.Contains(t, s, "&lt;bad&gt;")

	s = formatpoll(PollData{Msg: "Waiting", Elapsed: "0.1s"})
	assert.Equal(t, "Waiting&nbsp;(0.1s)", s)
}

func TestPoliceBlocksRepeatOffenders(t *testing.T) {
	p := NewPolice(2, 0)
	go p.Run()

	e := echo.New()
	e.Use(p.Middleware)
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "fine") })

	get := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, get("/ok"))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNotFound, get("/missing"))
	}

	assert.Eventually(t, func() bool {
		return get("/ok") == http.StatusForbidden
	}, defaultwait, defaulttick)

	st := p.Stats()
	assert.GreaterOrEqual(t, st.FourOhFour, uint64(3))
	assert.GreaterOrEqual(t, st.TwoHundred, uint64(1))
}
