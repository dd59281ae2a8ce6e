package export

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	minColumnWidth = 8
	maxColumnWidth = 255
	widthPadding   = 2
)

// widthTracker records the widest rendered text per column.
type widthTracker struct {
	max []int
}

func newWidthTracker(columns int) *widthTracker {
	return &widthTracker{max: make([]int, columns)}
}

func (t *widthTracker) observe(col int, text string) {
	if col < 0 || col >= len(t.max) {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		if n := runewidth.StringWidth(line); n > t.max[col] {
			t.max[col] = n
		}
	}
}

func (t *widthTracker) width(col int) float64 {
	w := t.max[col] + widthPadding
	if w < minColumnWidth {
		w = minColumnWidth
	}
	if w > maxColumnWidth {
		w = maxColumnWidth
	}
	return float64(w)
}
