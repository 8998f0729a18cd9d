package lyrics

// LineIndex computes the current and next line for a playback position and a
// delay offset, both in milliseconds. It is a pure function of its inputs and
// is recomputed on every position tick.
//
// The delay is subtracted: a positive delay shifts lyrics later. current is
// the greatest index whose timestamp is <= the adjusted position, or -1 when
// the position is before the first line. next is current+1 when in bounds,
// else -1.
//
// Range clamping of operator-entered delays happens at the configuration
// edge; this function accepts any offset.
func LineIndex(lines []Line, positionMs int64, delayMs int) (current int, next int) {
	if len(lines) == 0 {
		return -1, -1
	}

	adjusted := float64(positionMs)/1000 - float64(delayMs)/1000

	current = -1
	for i, line := range lines {
		if line.TimeSeconds <= adjusted {
			current = i
			continue
		}
		break
	}

	next = current + 1
	if next >= len(lines) {
		next = -1
	}

	return current, next
}
