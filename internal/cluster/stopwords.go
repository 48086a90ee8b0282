//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package cluster

import (
	"encoding/json"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"golang.org/x/exp/slices"
	"os"
	"path/filepath"
)

//
// STOPWORDS
//

var (
	// English100 - the 100 most common english words
	English100 = []string{"the", "be", "to", "of", "and", "a", "in", "that", "have", "i", "it", "for", "not", "on",
		"with", "he", "as", "you", "do", "at", "this", "but", "his", "by", "from", "they", "we", "say", "her", "she",
		"or", "an", "will", "my", "one", "all", "would", "there", "their", "what", "so", "up", "out", "if", "about",
		"who", "get", "which", "go", "me", "when", "make", "can", "like", "time", "no", "just", "him", "know", "take",
		"people", "into", "year", "your", "good", "some", "could", "them", "see", "other", "than", "then", "now",
		"look", "only", "come", "its", "over", "think", "also", "back", "after", "use", "two", "how", "our", "work",
		"first", "well", "way", "even", "new", "want", "because", "any", "these", "give", "day", "most", "us", "is",
		"are", "was", "were", "been", "has", "had"}
	// BioExtra - boilerplate of abstracts and article bodies
	BioExtra = []string{"et", "al", "fig", "figure", "table", "study", "studies", "results", "methods", "conclusion",
		"conclusions", "background", "objective", "using", "used", "however", "may", "between", "among", "both",
		"each", "during", "within", "without", "whereas", "which", "while", "p", "n", "ci", "vs", "i.e", "e.g"}
	// EnglishKeep - members of the lists above we will not toss
	EnglishKeep = []string{"people", "year", "time", "day", "work"}
)

// DefaultStops - English100 and BioExtra less EnglishKeep, sorted
func DefaultStops() []string {
	var ss []string
	for _, s := range append(slices.Clone(English100), BioExtra...) {
		if !slices.Contains(EnglishKeep, s) {
			ss = append(ss, s)
		}
	}
	slices.Sort(ss)
	return slices.Compact(ss)
}

// ReadStops - the stop list in dir; if it does not exist, generate it
func ReadStops(dir string) []string {
	const (
		ERR1 = "ReadStops() failed to parse %s"
		MSG1 = "ReadStops() wrote stop configuration file: %s"
	)

	stops := DefaultStops()
	if dir == "" {
		return stops
	}

	fp := filepath.Join(dir, vv.CONFIGVECTORSTOPS)
	content, err := os.ReadFile(fp)
	if err != nil {
		content, err = json.MarshalIndent(stops, vv.JSONINDENT, vv.JSONINDENT)
		Msg.EC(err)
		if err = os.WriteFile(fp, content, vv.WRITEPERMS); err == nil {
			Msg.PEEK(fmt.Sprintf(MSG1, fp))
		}
		return stops
	}

	var stp []string
	if err = json.Unmarshal(content, &stp); err != nil {
		Msg.CRIT(fmt.Sprintf(ERR1, fp))
		return stops
	}
	return stp
}
