//go:build unit
// +build unit

package visual

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BrianOtieno/quantum-computing/statevec"
)

func TestHistogram(t *testing.T) {
	out := Histogram(map[string]uint32{"11": 500, "00": 500}, 1000)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	// sorted by bitstring
	assert.True(t, strings.HasPrefix(lines[0], "00 "))
	assert.True(t, strings.HasPrefix(lines[1], "11 "))
	assert.Contains(t, lines[0], "50.00%")
	assert.Contains(t, lines[0], "(500)")
	assert.Contains(t, lines[0], strings.Repeat("█", HISTOGRAM_BAR_WIDTH))
}

func TestHistogramScalesAgainstTheMode(t *testing.T) {
	out := Histogram(map[string]uint32{"0": 1, "1": 999}, 1000)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	// a rare outcome still draws a visible bar
	assert.Contains(t, lines[0], "█")
	assert.Contains(t, lines[1], strings.Repeat("█", HISTOGRAM_BAR_WIDTH))
}

func TestHistogramEmpty(t *testing.T) {
	assert.Equal(t, "", Histogram(nil, 100))
}

func TestStateTable(t *testing.T) {
	st, err := statevec.NewState(2)
	assert.NoError(t, err)
	assert.NoError(t, st.Apply("h", nil, 0))
	assert.NoError(t, st.Apply("cx", nil, 0, 1))

	out := StateTable(st)
	assert.Contains(t, out, "basis")
	assert.Contains(t, out, "|00>")
	assert.Contains(t, out, "|11>")
	assert.NotContains(t, out, "|01>")
	assert.NotContains(t, out, "|10>")
	assert.Contains(t, out, "+0.7071+0.0000i")
	assert.Contains(t, out, "0.500000000")
}
