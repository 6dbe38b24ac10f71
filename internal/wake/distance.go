package wake

// boundedDistance computes the Levenshtein distance between a and b and
// reports whether it is within limit. It gives up early when the lengths
// differ by more than maxGap or when a whole DP row already exceeds limit.
func boundedDistance(a, b string, limit, maxGap int) (int, bool) {
	la, lb := len(a), len(b)
	if abs(la-lb) > maxGap {
		return 0, false
	}
	if la == 0 {
		return lb, lb <= limit
	}
	if lb == 0 {
		return la, la <= limit
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			rowMin = min(rowMin, curr[j])
		}
		if rowMin > limit {
			return rowMin, false
		}
		prev, curr = curr, prev
	}

	return prev[lb], prev[lb] <= limit
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
