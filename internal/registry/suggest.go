package registry

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

const maxSuggestions = 3

// closest returns up to limit candidates whose edit distance to name is small
// relative to its length, closest first, ties broken by name.
func closest(name string, candidates []string, limit int) []string {
	type scored struct {
		name string
		dist int
	}

	needle := strings.ToLower(name)
	threshold := max(2, len(needle)/3)

	var found []scored

	for _, c := range candidates {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(c))
		if d <= threshold {
			found = append(found, scored{c, d})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}

		return found[i].name < found[j].name
	})

	res := make([]string, 0, min(limit, len(found)))
	for i := 0; i < len(found) && i < limit; i++ {
		res = append(res, found[i].name)
	}

	return res
}
