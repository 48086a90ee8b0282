//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vlt

import (
	"encoding/json"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/gorilla/websocket"
	"html"
	"strings"
	"time"
)

//
// WEBSOCKET INFRASTRUCTURE: see https://tutorialedge.net/projects/chat-system-in-go-and-react/part-4-handling-multiple-clients/
//

type PollData struct {
	TotalWrk int    `json:"Poolofwork"`
	Remain   int    `json:"Remaining"`
	Msg      string `json:"Statusmessage"`
	Elapsed  string `json:"Elapsed"`
	Extra    string `json:"Notes"`
	ID       string `json:"ID"`
	Kind     string
	Done     bool
}

type WSClient struct {
	ID   string
	User string // only the owner of a job may follow it
	Conn *websocket.Conn
	Pool *WSPool
}

type WSPool struct {
	Add       chan *WSClient
	Remove    chan *WSClient
	ClientMap map[*WSClient]bool
	JSO       chan *WSJSOut
	ReadID    chan string
	Count     chan chan int
	hub       *JobHub
}

type WSJSOut struct {
	V     string `json:"value"`
	ID    string `json:"ID"`
	Close string `json:"close"`
}

// ReceiveID - get the job id from the client; record it; then exit
func (c *WSClient) ReceiveID() {
	const (
		FAIL1 = `WSClient.ReceiveID() failed`
		FAIL2 = `WSClient.ReceiveID() never received the job id`
	)

	quit := time.Now().Add(time.Second * 1)

	for {
		_, m, err := c.Conn.ReadMessage()
		if err != nil {
			Msg.FYI(FAIL1)
			return
		}

		if len(m) != 0 {
			id := string(m)
			id = strings.Replace(id, `"`, "", -1)
			c.ID = id
			c.Pool.ReadID <- id
			break
		}

		if time.Now().After(quit) {
			Msg.FYI(FAIL2)
			break
		}
	}
}

// WSMessageLoop - output the constantly updated job progress to the websocket; then exit
func (c *WSClient) WSMessageLoop() {
	const (
		FAIL    = `WSClient.WSMessageLoop() never found '%s' in the JobHub`
		SUCCESS = `WSClient.WSMessageLoop() found '%s' in the JobHub`
	)

	hub := c.Pool.hub

	// wait for the job to exist
	quit := time.Now().Add(time.Second * 1)
	for {
		if c.owns(hub.Fetch(c.ID)) {
			Msg.FYI(fmt.Sprintf(SUCCESS, c.ID))
			break
		}
		if time.Now().After(quit) {
			Msg.FYI(fmt.Sprintf(FAIL, c.ID))
			break
		}
		time.Sleep(vv.WSPOLLINGPAUSE)
	}

	// loop until the job finishes
	for {
		ji := hub.Fetch(c.ID)
		if !c.owns(ji) {
			break
		}

		pd := PollData{
			TotalWrk: ji.Total,
			Remain:   ji.Remain,
			Msg:      ji.Summary,
			Elapsed:  fmt.Sprintf("%.1fs", time.Since(ji.Launched).Seconds()),
			ID:       ji.ID,
			Kind:     ji.Kind,
			Done:     ji.Done,
			Extra:    ji.Err,
		}

		jso := &WSJSOut{
			V:     formatpoll(pd),
			ID:    c.ID,
			Close: "open",
		}
		if ji.Done {
			jso.Close = "close"
		}

		c.Pool.JSO <- jso
		if ji.Done {
			break
		}
		time.Sleep(vv.WSPOLLINGPAUSE)
	}
	c.Pool.Remove <- c
}

func (c *WSClient) owns(ji JobInfo) bool {
	return ji.Exists && ji.User == c.User
}

// WSPoolStartListening - the WSPool will listen for activity on its various channels (only called once at app launch)
func (pool *WSPool) WSPoolStartListening() {
	const (
		MSG1 = "Starting polling loop for %s"
		MSG2 = "WSPool client failed on WriteMessage()"
	)

	writemsg := func(jso *WSJSOut) {
		for cl := range pool.ClientMap {
			if cl.ID == jso.ID {
				js, y := json.Marshal(jso)
				Msg.EC(y)
				e := cl.Conn.WriteMessage(websocket.TextMessage, js)
				if e != nil {
					Msg.WARN(MSG2)
					delete(pool.ClientMap, cl)
				}
			}
		}
	}

	for {
		select {
		case id := <-pool.Add:
			pool.ClientMap[id] = true
		case id := <-pool.Remove:
			delete(pool.ClientMap, id)
		case id := <-pool.ReadID:
			Msg.PEEK(fmt.Sprintf(MSG1, id))
		case wrt := <-pool.JSO:
			writemsg(wrt)
		case ct := <-pool.Count:
			ct <- len(pool.ClientMap)
		}
	}
}

// Clients - how many websockets are open
func (pool *WSPool) Clients() int {
	ct := make(chan int)
	pool.Count <- ct
	return <-ct
}

// WSFillNewPool - build a new WSPool (one and only one built at app startup)
func WSFillNewPool(hub *JobHub) *WSPool {
	return &WSPool{
		Add:       make(chan *WSClient),
		Remove:    make(chan *WSClient),
		ClientMap: make(map[*WSClient]bool),
		JSO:       make(chan *WSJSOut),
		ReadID:    make(chan string),
		Count:     make(chan chan int),
		hub:       hub,
	}
}

// formatpoll - build HTML to send to the JS on the other side
func formatpoll(pd PollData) string {
	// example:
	// Training <span class="sought">w2v</span>: <span class="progress">31%</span> completed&nbsp;(3.2s)<br>

	const (
		FU  = `Finishing up...&nbsp;`
		FIN = `<span class="progress">Done</span>&nbsp;(%s)`
		PCT = `: <span class="progress">%s</span> completed&nbsp;(%s)<br>`
		EL1 = `&nbsp;(%s)<br>%s`
		EL2 = `&nbsp;(%s)`
		ERR = `<br><span class="smallerthannormal">%s</span>`
	)

	htm := pd.Msg

	switch {
	case pd.Done:
		htm += " " + fmt.Sprintf(FIN, pd.Elapsed)
	case pd.TotalWrk != 0 && pd.Remain != 0:
		pctd := (float64(pd.TotalWrk-pd.Remain) / float64(pd.TotalWrk)) * 100
		htm += fmt.Sprintf(PCT, fmt.Sprintf("%.0f", pctd)+"%", pd.Elapsed)
	case pd.TotalWrk != 0 && pd.Remain == 0:
		htm += fmt.Sprintf(EL1, pd.Elapsed, FU)
	default:
		// nothing measurable yet
		htm += fmt.Sprintf(EL2, pd.Elapsed)
	}

	if len(pd.Extra) != 0 {
		htm += fmt.Sprintf(ERR, html.EscapeString(pd.Extra))
	}

	return htm
}
