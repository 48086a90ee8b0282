//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vlt

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

//
// CHANNEL-BASED JOBINFO REPORTING TO COMMUNICATE PROGRESS BETWEEN ROUTINES: background jobs write; websocket reads
//

// JobInfo - struct used to deliver info about background jobs in progress
type JobInfo struct {
	ID        string
	User      string
	Kind      string // "train", "cluster", ...
	Exists    bool
	Total     int
	Remain    int
	Summary   string
	Done      bool
	Err       string
	Result    any
	Launched  time.Time
	Finished  time.Time
	CancelFnc context.CancelFunc
}

// JIKVi - JobHub helper struct for setting an int Val on the item at map[Key]
type JIKVi struct {
	Key string
	Val int
}

// JIKVs - JobHub helper struct for setting a string Val on the item at map[Key]
type JIKVs struct {
	Key string
	Val string
}

// JIDone - JobHub helper struct for marking the item at map[Key] finished
type JIDone struct {
	Key    string
	Result any
	Err    error
}

// JIReply - JobHub helper struct for returning the JobInfo stored at map[Key]
type JIReply struct {
	Key      string
	Response chan JobInfo
}

// JIList - JobHub helper struct for returning every JobInfo of a user
type JIList struct {
	User     string
	Response chan []JobInfo
}

// JobHub - the channels that talk to the one goroutine owning the job map
type JobHub struct {
	InsertInfo    chan JobInfo
	UpdateTotal   chan JIKVi
	UpdateRemain  chan JIKVi
	UpdateSummMsg chan JIKVs
	Finish        chan JIDone
	RequestInfo   chan JIReply
	RequestList   chan JIList
	Del           chan string
	Reset         chan string
	keep          time.Duration
}

// BuildJobHub - build the JobHub; the server builds one and only one at startup
func BuildJobHub(keep time.Duration) *JobHub {
	return &JobHub{
		InsertInfo:    make(chan JobInfo),
		UpdateTotal:   make(chan JIKVi, 2*runtime.NumCPU()),
		UpdateRemain:  make(chan JIKVi, 2*runtime.NumCPU()),
		UpdateSummMsg: make(chan JIKVs, 2*runtime.NumCPU()),
		Finish:        make(chan JIDone),
		RequestInfo:   make(chan JIReply),
		RequestList:   make(chan JIList),
		Del:           make(chan string),
		Reset:         make(chan string),
		keep:          keep,
	}
}

// Run - the loop that owns every JobInfo; finished jobs are kept for a while so their results can be collected
func (h *JobHub) Run() {
	const (
		CANC  = "JobHub reports that '%s' was cancelled"
		SWEEP = "JobHub swept %d finished job(s)"
	)

	var (
		allinfo = make(map[string]JobInfo)
		sweeper = time.NewTicker(h.keep/2 + time.Second)
	)

	fetchifexists := func(id string) (JobInfo, bool) {
		ji, ok := allinfo[id]
		return ji, ok
	}

	// see also the notes at RtResetSession()
	cancelall := func(u string) {
		for _, v := range allinfo {
			if v.User == u && !v.Done && v.CancelFnc != nil {
				v.CancelFnc()
				Msg.PEEK(fmt.Sprintf(CANC, v.ID))
			}
		}
	}

	sweep := func() {
		n := 0
		for k, v := range allinfo {
			if v.Done && time.Since(v.Finished) > h.keep {
				delete(allinfo, k)
				n++
			}
		}
		if n > 0 {
			Msg.TMI(fmt.Sprintf(SWEEP, n))
		}
	}

	// the main loop; it will never exit
	for {
		select {
		case rq := <-h.RequestInfo:
			ji, ok := fetchifexists(rq.Key)
			ji.Exists = ok
			rq.Response <- ji
		case rl := <-h.RequestList:
			var jj []JobInfo
			for _, v := range allinfo {
				if v.User == rl.User {
					jj = append(jj, v)
				}
			}
			rl.Response <- jj
		case ji := <-h.InsertInfo:
			ji.Exists = true
			allinfo[ji.ID] = ji
		case wr := <-h.UpdateTotal:
			if x, ok := fetchifexists(wr.Key); ok && !x.Done {
				x.Total = wr.Val
				allinfo[wr.Key] = x
			}
		case wr := <-h.UpdateRemain:
			if x, ok := fetchifexists(wr.Key); ok && !x.Done {
				x.Remain = wr.Val
				allinfo[wr.Key] = x
			}
		case wr := <-h.UpdateSummMsg:
			if x, ok := fetchifexists(wr.Key); ok && !x.Done {
				x.Summary = wr.Val
				allinfo[wr.Key] = x
			}
		case fin := <-h.Finish:
			if x, ok := fetchifexists(fin.Key); ok {
				x.Done = true
				x.Remain = 0
				x.Result = fin.Result
				x.Finished = time.Now()
				if fin.Err != nil {
					x.Err = fin.Err.Error()
				}
				allinfo[fin.Key] = x
			}
		case reset := <-h.Reset:
			cancelall(reset)
		case del := <-h.Del:
			delete(allinfo, del)
		case <-sweeper.C:
			sweep()
		}
	}
}

func (h *JobHub) Insert(ji JobInfo) {
	h.InsertInfo <- ji
}

// Progress - how much of the job is left
func (h *JobHub) Progress(id string, total int, remain int) {
	h.UpdateTotal <- JIKVi{Key: id, Val: total}
	h.UpdateRemain <- JIKVi{Key: id, Val: remain}
}

func (h *JobHub) Summary(id string, s string) {
	h.UpdateSummMsg <- JIKVs{Key: id, Val: s}
}

func (h *JobHub) Done(id string, result any, err error) {
	h.Finish <- JIDone{Key: id, Result: result, Err: err}
}

// Fetch - a copy of the JobInfo; Exists is false if the hub does not know the id
func (h *JobHub) Fetch(id string) JobInfo {
	responder := JIReply{Key: id, Response: make(chan JobInfo)}
	h.RequestInfo <- responder
	return <-responder.Response
}

// List - every job of a user
func (h *JobHub) List(user string) []JobInfo {
	responder := JIList{User: user, Response: make(chan []JobInfo)}
	h.RequestList <- responder
	return <-responder.Response
}

func (h *JobHub) Delete(id string) {
	h.Del <- id
}

// CancelAll - cancel every unfinished job of a user
func (h *JobHub) CancelAll(user string) {
	h.Reset <- user
}
