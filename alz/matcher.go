package alz

// findMatch looks for the longest run in the window before pos that repeats at pos.
// The scan walks from the oldest window byte towards pos and restarts one byte after the start
// of a broken run. A run at least as long as the best one replaces it, so ties go to the
// nearest occurrence. Runs end at pos, they never overlap the bytes being matched.
// offset is distance-1.
func findMatch(src []byte, pos int) (offset int, length int, ok bool) {
	dict := max(0, pos-WindowSize)
	look := pos
	run := 0
	start := 0
	best := 0

	for dict < pos {
		if look < len(src) && src[dict] == src[look] {
			dict++
			look++
			run++
			if run >= best {
				start = dict - run
				best = run
			}
		} else {
			dict = dict - run + 1
			look = pos
			run = 0
		}
	}

	if best < MinMatch {
		return 0, 0, false
	}
	return pos - start - 1, min(best, MaxMatch), true
}
