// Package levenshtein measures edit distance between identifiers and picks
// the closest candidate for "did you mean" hints.
package levenshtein

// Context reuses its scratch column across Distance calls. It is not safe
// for concurrent use.
type Context struct {
	column []int
}

func (ctx *Context) scratch(length int) []int {
	if cap(ctx.column) < length {
		ctx.column = make([]int, length)
	}

	return ctx.column[:length]
}

// Distance returns the number of single-rune insertions, deletions or
// substitutions that turn str1 into str2. It uses O(len(str1)) space.
func (ctx *Context) Distance(str1, str2 string) int {
	s1 := []rune(str1)
	s2 := []rune(str2)

	if len(s2) == 0 {
		return len(s1)
	}

	column := ctx.scratch(len(s1) + 1)
	for idx := range column {
		column[idx] = idx
	}

	for col, s2Rune := range s2 {
		diagonal := column[0]
		column[0] = col + 1

		for row, s1Rune := range s1 {
			above := column[row+1]

			cost := 1
			if s1Rune == s2Rune {
				cost = 0
			}

			column[row+1] = min(above+1, column[row]+1, diagonal+cost)
			diagonal = above
		}
	}

	return column[len(s1)]
}

// Closest returns the candidate nearest to target whose distance is at most
// maxDistance. Ties keep the earlier candidate.
func Closest(target string, candidates []string, maxDistance int) (string, bool) {
	var ctx Context

	best := ""
	bestDistance := maxDistance + 1

	for _, candidate := range candidates {
		distance := ctx.Distance(target, candidate)
		if distance < bestDistance {
			best = candidate
			bestDistance = distance
		}
	}

	return best, bestDistance <= maxDistance
}
