//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package classify

import (
	"github.com/e-gun/ScreeningGoServer/internal/rank"
)

func rowsof(ss []rank.Scored) []int {
	out := make([]int, len(ss))
	for i, s := range ss {
		out[i] = s.Row
	}
	return out
}
