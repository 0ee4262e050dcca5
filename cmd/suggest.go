package cmd

import (
	"fmt"

	"github.com/agnivade/levenshtein"
)

// suggest returns the candidate closest to name, or "" when none is close
// enough to be a plausible typo.
func suggest(name string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	limit := max(2, len([]rune(name))/3)
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}

// withHint adds a "did you mean" hint to err when name looks like a typo of
// one of candidates.
func withHint(err error, name string, candidates []string) error {
	if s := suggest(name, candidates); s != "" && s != name {
		return fmt.Errorf("%w (did you mean %q?)", err, s)
	}
	return err
}
