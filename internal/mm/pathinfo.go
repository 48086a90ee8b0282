//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package mm

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
)

//
// CHANNEL-BASED PATHINFO REPORTING TO COMMUNICATE STATS BETWEEN ROUTINES
//

// PIReply - PathInfoHub helper struct for returning the PathInfo
type PIReply struct {
	response chan map[string]int
}

var (
	PIUpdate  = make(chan string, 2*runtime.NumCPU())
	PIRequest = make(chan PIReply)
)

// LogPaths - increment path counter for this path and report the heap
func (m *MessageMaker) LogPaths(fn string) {
	// sample output: "[SGS] RtActiveSubmit() current heap: 340M"
	const (
		HEAP = "%s current heap: %s"
	)

	// never block a response on the stats hub
	select {
	case PIUpdate <- fn:
	default:
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	m.PEEK(fmt.Sprintf(HEAP, fn, fmt.Sprintf("%dM", mem.HeapAlloc/1024/1024)))
}

// PathInfoHub - log paths that pass through MessageMaker.LogPaths; there is only one of these
func PathInfoHub() {
	var (
		PathsCalled = make(map[string]int)
	)

	fetch := func() map[string]int {
		cp := make(map[string]int, len(PathsCalled))
		for k, v := range PathsCalled {
			cp[k] = v
		}
		return cp
	}

	// the main loop; it will never exit
	for {
		select {
		case upd := <-PIUpdate:
			PathsCalled[upd]++
		case req := <-PIRequest:
			req.response <- fetch()
		}
	}
}

// PathStats - a snapshot of the path counts
func PathStats() map[string]int {
	responder := PIReply{response: make(chan map[string]int)}
	PIRequest <- responder
	return <-responder.response
}

// PathSummary - "ActiveStart: 3 * ActiveSubmit: 12"
func PathSummary(ctr map[string]int) string {
	const (
		STATTMPL = "%s: %d"
	)
	var pairs []string
	for k, v := range ctr {
		this := strings.TrimPrefix(k, "Rt")
		this = strings.TrimSuffix(this, "()")
		pairs = append(pairs, fmt.Sprintf(STATTMPL, this, v))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, " * ")
}
