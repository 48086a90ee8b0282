//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vlt

import (
	"fmt"
	"github.com/labstack/echo/v4"
	"net/http"
	"strings"
	"time"
)

//
// RESPONSEPOLICING: count the response codes; strike and then block the addresses that keep earning errors
//

type EchoResponseStats struct {
	TwoHundred  uint64
	FourHundred uint64
	FourOhThree uint64
	FourOhFour  uint64
	FourOhFive  uint64
	FiveHundred uint64
}

type blacklistrd struct {
	ip   string
	resp chan bool
}

type blacklistwr struct {
	ip   string
	resp chan bool
}

type statlistwr struct {
	code int
	ip   string
	uri  string
}

// Police - the channels of the one goroutine that owns the blacklist and the response counts
type Police struct {
	bListWR   chan blacklistwr
	bListRD   chan blacklistrd
	sListWR   chan statlistwr
	statsRD   chan chan EchoResponseStats
	strikes   int
	slowdown  time.Duration
	stats     EchoResponseStats
	strikemap map[string]int
	blacklist map[string]struct{}
}

// NewPolice - strikes is the number of errors an address may earn before it is refused
func NewPolice(strikes int, slowdown time.Duration) *Police {
	return &Police{
		bListWR:   make(chan blacklistwr),
		bListRD:   make(chan blacklistrd),
		sListWR:   make(chan statlistwr, 16),
		statsRD:   make(chan chan EchoResponseStats),
		strikes:   strikes,
		slowdown:  slowdown,
		strikemap: make(map[string]int),
		blacklist: make(map[string]struct{}),
	}
}

// Middleware - this is custom middleware for an *echo.Echo
func (p *Police) Middleware(nextechohandler echo.HandlerFunc) echo.HandlerFunc {
	const (
		BLACK0 = `IP address %s was blacklisted: too many previous Response code errors`
		BLACK1 = `IP address %s received a strike: invalid request prefix in URI "%s"`
	)

	return func(c echo.Context) error {
		ip := c.RealIP()
		rq := c.Request().RequestURI

		// presumed guilty: 403
		registerresult := statlistwr{code: http.StatusForbidden, ip: ip, uri: rq}

		ok := p.allowed(ip)

		// is something like 'http://journalseek.net/' in the request?
		if strings.HasPrefix(rq, "http:") || strings.HasPrefix(rq, "https:") {
			ok = false
			if !p.strike(ip) {
				Msg.WARN(fmt.Sprintf(BLACK1, ip, rq))
			}
		}

		if !ok {
			p.sListWR <- registerresult
			time.Sleep(p.slowdown)
			return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf(BLACK0, ip))
		}

		// do this before reading c.Response().Status or you will always get "200"
		if err := nextechohandler(c); err != nil {
			c.Error(err)
		}
		registerresult.code = c.Response().Status
		p.sListWR <- registerresult
		return nil
	}
}

func (p *Police) allowed(ip string) bool {
	rd := blacklistrd{ip: ip, resp: make(chan bool)}
	p.bListRD <- rd
	return <-rd.resp
}

// strike - true if this strike put the address on the blacklist
func (p *Police) strike(ip string) bool {
	wr := blacklistwr{ip: ip, resp: make(chan bool)}
	p.bListWR <- wr
	return <-wr.resp
}

// Stats - a snapshot of the response counts
func (p *Police) Stats() EchoResponseStats {
	rd := make(chan EchoResponseStats)
	p.statsRD <- rd
	return <-rd
}

// Run - blacklist read/write plus the response log; the loop will never exit
func (p *Police) Run() {
	const (
		BLACK0 = `IP address %s was blacklisted: too many previous Response code errors; %d address(es) on the blacklist`
		BLACK1 = `IP address %s received a strike: status %d for URI "%s"`
		FYI200 = `StatusOK count is %d`
		FRQ200 = 1000
		FYI403 = `[%s] StatusForbidden count is %d. Last blocked was %s requesting "%s"`
		FRQ403 = 100
		FYI404 = `StatusNotFound count is %d`
		FRQ404 = 100
		FYI405 = `MethodNotAllowed count is %d`
		FRQ405 = 5
		FYI500 = `StatusInternalServerError count is %d`
		FRQ500 = 1
	)

	warn := func(v uint64, frq uint64, fyi string) {
		if v%frq == 0 {
			Msg.NOTE(fmt.Sprintf(fyi, v))
		}
	}

	strike := func(ip string) bool {
		if _, ok := p.strikemap[ip]; !ok {
			p.strikemap[ip] = 1
			return false
		}
		if p.strikemap[ip] >= p.strikes {
			p.blacklist[ip] = struct{}{}
			Msg.NOTE(fmt.Sprintf(BLACK0, ip, len(p.blacklist)))
			return true
		}
		p.strikemap[ip]++
		return false
	}

	logstatus := func(status statlistwr) {
		switch status.code {
		case http.StatusOK:
			p.stats.TwoHundred++
			warn(p.stats.TwoHundred, FRQ200, FYI200)
		case http.StatusBadRequest:
			// "need more labeled examples" and friends: the user's business, not a strike
			p.stats.FourHundred++
		case http.StatusForbidden:
			p.stats.FourOhThree++
			if p.stats.FourOhThree%FRQ403 == 0 {
				when := time.Now().Format(time.RFC822)
				Msg.NOTE(fmt.Sprintf(FYI403, when, p.stats.FourOhThree, status.ip, status.uri))
			}
		case http.StatusNotFound:
			p.stats.FourOhFour++
			warn(p.stats.FourOhFour, FRQ404, FYI404)
			if !strike(status.ip) {
				Msg.PEEK(fmt.Sprintf(BLACK1, status.ip, status.code, status.uri))
			}
		case http.StatusMethodNotAllowed:
			p.stats.FourOhFive++
			warn(p.stats.FourOhFive, FRQ405, FYI405)
			strike(status.ip)
		case http.StatusInternalServerError:
			p.stats.FiveHundred++
			warn(p.stats.FiveHundred, FRQ500, FYI500)
			strike(status.ip)
		default:
			// not interested: 302 from "/reset/session", 101 from "/ws"
		}
	}

	for {
		select {
		case rd := <-p.bListRD:
			_, bad := p.blacklist[rd.ip]
			rd.resp <- !bad
		case wr := <-p.bListWR:
			wr.resp <- strike(wr.ip)
		case st := <-p.sListWR:
			logstatus(st)
		case rd := <-p.statsRD:
			rd <- p.stats
		}
	}
}
