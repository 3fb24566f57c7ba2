// Package visual renders measurement counts, statevectors and circuits
// as plain text for the terminal.
package visual

import (
	"fmt"
	"math/cmplx"
	"sort"
	"strings"

	"github.com/BrianOtieno/quantum-computing/statevec"
)

const (
	HISTOGRAM_BAR_WIDTH   = 40
	MIN_SHOWN_PROBABILITY = 1e-10
)

// Histogram renders one bar per observed bitstring, sorted by
// bitstring, scaled against the most frequent outcome. Both
// core.Counts and statevec.Counts fit the counts argument.
func Histogram(counts map[string]uint32, shots int) string {
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	var max uint32
	var total uint32
	for k, c := range counts {
		keys = append(keys, k)
		total += c
		if c > max {
			max = c
		}
	}
	sort.Strings(keys)
	if shots <= 0 {
		shots = int(total)
	}

	var sb strings.Builder
	for _, k := range keys {
		c := counts[k]
		width := int(float64(c) / float64(max) * HISTOGRAM_BAR_WIDTH)
		if width == 0 && c > 0 {
			width = 1
		}
		bar := strings.Repeat("█", width)
		pct := float64(c) / float64(shots) * 100
		sb.WriteString(fmt.Sprintf("%s %-*s %6.2f%% (%d)\n",
			k, HISTOGRAM_BAR_WIDTH, bar, pct, c))
	}
	return sb.String()
}

// StateTable lists every basis state with a probability above
// MIN_SHOWN_PROBABILITY along with its amplitude and phase.
func StateTable(st *statevec.State) string {
	n := st.Qubits()
	dim := 1 << n

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-*s  %-18s  %-11s  %s\n",
		n+2, "basis", "amplitude", "probability", "phase"))
	for i := 0; i < dim; i++ {
		label := statevec.BasisLabel(i, n)
		amp, err := st.Amplitude(label)
		if err != nil {
			continue
		}
		p := real(amp)*real(amp) + imag(amp)*imag(amp)
		if p < MIN_SHOWN_PROBABILITY {
			continue
		}
		sb.WriteString(fmt.Sprintf("|%s>  %-18s  %.9f  %+.4f\n",
			label, fmt.Sprintf("%+.4f%+.4fi", real(amp), imag(amp)),
			p, cmplx.Phase(amp)))
	}
	return sb.String()
}
