//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/corpus"
	"github.com/e-gun/ScreeningGoServer/internal/vlt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/labstack/echo/v4"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// RtSetOption - modify the session in light of the selection made
func RtSetOption(c echo.Context) error {
	const (
		FAIL1 = "RtSetOption() was given bad input: %s/%s"
		FAIL2 = "RtSetOption() hit an impossible case"
	)
	c.Response().After(func() { Msg.LogPaths("RtSetOption()") })

	user := ReadUUIDCookie(c)
	opt := c.Param("opt")
	val := c.Param("val")

	if opt == "" || val == "" {
		Msg.WARN(fmt.Sprintf(FAIL1, opt, val))
		return c.JSONPretty(http.StatusOK, vlt.AllSessions.GetSess(user), vv.JSONINDENT)
	}

	err := vlt.AllSessions.With(user, func(us *vlt.UserState) error {
		s := &us.Prefs

		valoptionlist := []string{"model", "space"}
		if slices.Contains(valoptionlist, opt) {
			switch opt {
			case "model":
				if slices.Contains(vv.ModelTypes, val) {
					s.Model = val
				}
			case "space":
				valid := []string{"topic", "document"}
				if slices.Contains(valid, val) {
					s.Space = val
				}
			default:
				Msg.WARN(FAIL2)
			}
		}

		listoptionlist := []string{"corpora", "categories"}
		if slices.Contains(listoptionlist, opt) {
			vals := strings.Split(val, ",")
			switch opt {
			case "corpora":
				var cc []string
				for _, v := range vals {
					if corpus.ValidName(v) == nil {
						cc = append(cc, v)
					}
				}
				if len(cc) != 0 {
					slices.Sort(cc)
					s.ActiveCorp = slices.Compact(cc)
				}
			case "categories":
				var cc []string
				for _, v := range vals {
					v = strings.ToUpper(v)
					if slices.Contains(vv.TagCategories, v) {
						cc = append(cc, v)
					}
				}
				if len(cc) != 0 {
					s.Categories = cc
				}
			default:
				Msg.WARN(FAIL2)
			}
		}

		spinoptionlist := []string{"batchsize", "topn", "topics"}
		if slices.Contains(spinoptionlist, opt) {
			intval, e := strconv.Atoi(val)
			if e == nil {
				switch opt {
				case "batchsize":
					s.BatchSize = clamp(intval, 1, vv.MAXBATCHSIZE)
				case "topn":
					s.TopN = clamp(intval, 1, vv.MAXTOPN)
				case "topics":
					s.Topics = clamp(intval, 1, vv.MAXTOPICS)
				default:
					Msg.WARN(FAIL2)
				}
			}
		}
		return nil
	})
	Msg.EC(err)

	return c.JSONPretty(http.StatusOK, vlt.AllSessions.GetSess(user), vv.JSONINDENT)
}

func clamp(v int, lo int, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
