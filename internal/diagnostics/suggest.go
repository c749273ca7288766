package diagnostics

import (
	"sort"
	"strings"
)

// Suggest picks up to max candidates that look like target: closest edit
// distance first, then a shared prefix, then alphabetical. Candidates further
// than a third of target's length away, sharing no prefix, are dropped.
func Suggest(target string, candidates []string, max int) []string {
	type scored struct {
		name   string
		dist   int
		prefix int
	}
	limit := len([]rune(target))/3 + 1
	seen := make(map[string]bool, len(candidates))
	var picks []scored
	for _, c := range candidates {
		if c == "" || c == target || seen[c] {
			continue
		}
		seen[c] = true
		d := editDistance(strings.ToLower(target), strings.ToLower(c))
		p := commonPrefix(target, c)
		if d > limit && p < 2 {
			continue
		}
		picks = append(picks, scored{c, d, p})
	}
	sort.Slice(picks, func(i, j int) bool {
		if picks[i].dist != picks[j].dist {
			return picks[i].dist < picks[j].dist
		}
		if picks[i].prefix != picks[j].prefix {
			return picks[i].prefix > picks[j].prefix
		}
		return picks[i].name < picks[j].name
	})
	if max > 0 && len(picks) > max {
		picks = picks[:max]
	}
	out := make([]string, len(picks))
	for i, p := range picks {
		out[i] = p.name
	}
	return out
}

func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func commonPrefix(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := 0
	for n < len(ra) && n < len(rb) && ra[n] == rb[n] {
		n++
	}
	return n
}
