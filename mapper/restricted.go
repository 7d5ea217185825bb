package mapper

import (
	"github.com/pkg/math"
	"k8s.io/apimachinery/pkg/util/sets"

	"gitlab.com/akita/fivegsim/mapping"
	"gitlab.com/akita/fivegsim/platform"
)

// ExclusionSets enumerates the sets of processors to leave unused. Per
// processor type, the first 0, 1, ..., k processors can be excluded, and the
// sets combine one choice per type. The combination excluding every
// processor is left out. If maxExclude is positive, k is bounded by it.
func ExclusionSets(p *platform.Platform, maxExclude int) []sets.Set[string] {
	types := p.ProcessorTypes()

	groups := make([][]*platform.Processor, len(types))
	limits := make([]int, len(types))
	for i, t := range types {
		groups[i] = p.ProcessorsOfType(t)
		limits[i] = len(groups[i])
		if maxExclude > 0 {
			limits[i] = math.MinInt(limits[i], maxExclude)
		}
	}

	var result []sets.Set[string]
	choice := make([]int, len(types))
	for {
		excluded := sets.New[string]()
		for i, n := range choice {
			for _, pe := range groups[i][:n] {
				excluded.Insert(pe.Name)
			}
		}
		if excluded.Len() < len(p.Processors()) {
			result = append(result, excluded)
		}

		// Advance the mixed-radix counter, the last type fastest.
		i := len(choice) - 1
		for ; i >= 0; i-- {
			choice[i]++
			if choice[i] <= limits[i] {
				break
			}
			choice[i] = 0
		}
		if i < 0 {
			return result
		}
	}
}

// ParetoFilter keeps the mappings that no other mapping beats in both
// execution time and energy. Of mappings with identical estimates, only the
// first is kept.
func ParetoFilter(mappings []*mapping.Mapping) []*mapping.Mapping {
	var front []*mapping.Mapping

	for i, a := range mappings {
		keep := true
		for j, b := range mappings {
			if i == j {
				continue
			}

			if dominates(b.Metadata, a.Metadata) ||
				(b.Metadata == a.Metadata && j < i) {
				keep = false
				break
			}
		}

		if keep {
			front = append(front, a)
		}
	}

	return front
}

func dominates(a, b mapping.Metadata) bool {
	return a.ExecTime <= b.ExecTime && a.Energy <= b.Energy &&
		(a.ExecTime < b.ExecTime || a.Energy < b.Energy)
}
