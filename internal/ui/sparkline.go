package ui

import "slices"

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders throughput samples as exactly width block characters,
// scaled to the largest sample. Missing history is padded on the left.
func Sparkline(samples []int64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}

	out := make([]rune, width)
	pad := width - len(samples)
	for i := range pad {
		out[i] = sparkBlocks[0]
	}

	peak := int64(0)
	if len(samples) > 0 {
		peak = slices.Max(samples)
	}
	top := int64(len(sparkBlocks) - 1)
	for i, v := range samples {
		idx := int64(0)
		if peak > 0 && v > 0 {
			idx = v * top / peak
		}
		out[pad+i] = sparkBlocks[idx]
	}
	return string(out)
}
