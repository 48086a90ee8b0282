//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package corpus

import (
	"strings"
	"unicode"
)

const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Tokenize - lowercase, drop ASCII punctuation, split on whitespace; "IL-13, (asthma)" is [il13 asthma]
func Tokenize(text string) []string {
	dropped := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && strings.ContainsRune(punctuation, r) {
			return -1
		}
		return unicode.ToLower(r)
	}, text)
	return strings.Fields(dropped)
}
