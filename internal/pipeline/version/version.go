// Package version implements the three-tier version algebra: normalizing
// client-supplied 1-, 2-, or 3-tuples into a padded triple, denormalizing
// back to the shortest external presentation, and allocating the next
// version for an asset.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Sentinel marks an unset tier. Sentinel tiers sort before any non-negative
// value during allocation but are trimmed first on denormalization.
const Sentinel = -1

// Triple is the normalized, always-3-tuple internal form of a version id.
type Triple [3]int

// Normalize pads a 1-, 2-, or 3-element slice with Sentinel to a Triple.
// It panics if given more than 3 elements; callers control arity.
func Normalize(tiers ...int) Triple {
	if len(tiers) > 3 {
		panic(fmt.Sprintf("version: too many tiers: %d", len(tiers)))
	}
	var t Triple
	for i := range t {
		t[i] = Sentinel
	}
	copy(t[:], tiers)
	return t
}

// Denormalize right-trims trailing sentinels and returns the shortest slice
// that round-trips through Normalize. An all-sentinel triple denormalizes to
// []int{0}, matching the "starting row" convention of §4.1.
func Denormalize(t Triple) []int {
	n := 3
	for n > 1 && t[n-1] == Sentinel {
		n--
	}
	if n == 1 && t[0] == Sentinel {
		return []int{0}
	}
	return append([]int(nil), t[:n]...)
}

// Less implements the total ordering used for "latest": lexicographic by
// (v0, v1, v2) with Sentinel sorting before any non-negative value.
func (t Triple) Less(o Triple) bool {
	for i := 0; i < 3; i++ {
		if t[i] != o[i] {
			return t[i] < o[i]
		}
	}
	return false
}

// String renders the dotted external form, e.g. "3.1.2", "3.1", or "3".
func (t Triple) String() string {
	parts := Denormalize(t)
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = strconv.Itoa(p)
	}
	return strings.Join(s, ".")
}

// ParseTriple parses a dotted external form such as "3.1.2" or "3" into a
// Triple, for CLI/config callers accepting an explicit version on the
// command line.
func ParseTriple(s string) (Triple, error) {
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Triple{}, fmt.Errorf("version: too many tiers in %q", s)
	}
	tiers := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Triple{}, fmt.Errorf("version: invalid tier %q in %q: %w", p, s, err)
		}
		tiers[i] = n
	}
	return Normalize(tiers...), nil
}

// Zero is the starting row for an empty asset, as if it had already
// allocated (0, -1, -1); the first real allocation bumps it to (1, -1, -1).
var Zero = Triple{0, Sentinel, Sentinel}

// NextAfter implements the §4.1 allocation rule given the per-asset maximum
// Triple currently on record (Zero if the asset has no versions yet).
func NextAfter(max Triple) Triple {
	idx := -1
	for i := 0; i < 3; i++ {
		if max[i] == Sentinel {
			idx = i
			break
		}
	}
	bumpIdx := 2
	if idx >= 0 {
		bumpIdx = idx - 1
		if bumpIdx < 0 {
			bumpIdx = 0
		}
	}
	next := max
	next[bumpIdx]++
	for i := bumpIdx + 1; i < 3; i++ {
		next[i] = Sentinel
	}
	return next
}
