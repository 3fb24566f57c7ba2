// Package qaoa approximates MaxCut on a small graph with the quantum
// approximate optimization algorithm.
package qaoa

import (
	"fmt"

	"github.com/BrianOtieno/quantum-computing/algo"
	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/BrianOtieno/quantum-computing/qasm"
)

const (
	MIN_NODES = 2
	MAX_NODES = 4

	DEFAULT_EVALUATIONS = 100
)

type Edge [2]int

type Graph struct {
	Nodes int
	Edges []Edge
}

// Ring returns the cycle graph on n nodes.
func Ring(n int) Graph {
	g := Graph{Nodes: n}
	for i := 0; i < n; i++ {
		g.Edges = append(g.Edges, Edge{i, (i + 1) % n})
	}
	return g
}

func (g Graph) validate() error {
	if g.Nodes < MIN_NODES || g.Nodes > MAX_NODES {
		return fmt.Errorf("maxcut needs %d to %d nodes, got %d", MIN_NODES, MAX_NODES, g.Nodes)
	}
	if len(g.Edges) == 0 {
		return fmt.Errorf("the graph has no edges")
	}
	for _, e := range g.Edges {
		if e[0] < 0 || e[0] >= g.Nodes || e[1] < 0 || e[1] >= g.Nodes || e[0] == e[1] {
			return fmt.Errorf("bad edge (%d, %d) for %d nodes", e[0], e[1], g.Nodes)
		}
	}
	return nil
}

// cutValue counts the edges cut by an assignment given as a counts-key
// bitstring, node 0 rightmost.
func (g Graph) cutValue(bits string) int {
	cut := 0
	for _, e := range g.Edges {
		if bits[g.Nodes-1-e[0]] != bits[g.Nodes-1-e[1]] {
			cut++
		}
	}
	return cut
}

// bestCut scans all assignments. Fine at this scale.
func (g Graph) bestCut() int {
	best := 0
	for mask := 0; mask < 1<<g.Nodes; mask++ {
		cut := 0
		for _, e := range g.Edges {
			if (mask>>e[0])&1 != (mask>>e[1])&1 {
				cut++
			}
		}
		if cut > best {
			best = cut
		}
	}
	return best
}

type Config struct {
	// Graph defaults to the four-node ring when left empty.
	Graph Graph
	// Layers is the circuit depth p.
	Layers int
	// Shots per estimation job and for the final sample.
	Shots int
	// MaxEvaluations bounds the objective calls.
	MaxEvaluations int
}

type Result struct {
	Bitstring string
	CutValue  int
	BestCut   int
	Ratio     float64
	Gamma     []float64
	Beta      []float64
	Energy    float64
	Counts    core.Counts
	QASM      string
}

// Run optimizes the layer angles against the cost expectation, then
// samples the circuit at the best angles and reads off the modal cut.
func Run(s *algo.Session, cfg Config) (*Result, error) {
	g := cfg.Graph
	if g.Nodes == 0 {
		g = Ring(4)
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	if cfg.Layers <= 0 {
		cfg.Layers = 1
	}
	if cfg.MaxEvaluations <= 0 {
		cfg.MaxEvaluations = DEFAULT_EVALUATIONS
	}
	terms := make([]algo.PauliTerm, len(g.Edges))
	for i, e := range g.Edges {
		terms[i] = algo.PauliTerm{Pauli: fmt.Sprintf("Z %d Z %d", e[0], e[1]), Coeff: 1.0}
	}

	// maximizing the cut is minimizing the sum of edge ZZ expectations
	var evalErr error
	objective := func(x []float64) float64 {
		gamma, beta := x[:cfg.Layers], x[cfg.Layers:]
		qasmText, err := circuit(g, gamma, beta, false).QASM()
		if err == nil {
			var exp float64
			exp, _, err = s.Estimate(qasmText, terms, cfg.Shots)
			if err == nil {
				return exp
			}
		}
		if evalErr == nil {
			evalErr = err
		}
		return float64(len(g.Edges))
	}
	initial := make([]float64, 2*cfg.Layers)
	for k := 0; k < cfg.Layers; k++ {
		initial[k] = 0.2
		initial[cfg.Layers+k] = 0.3
	}
	opt, err := algo.Minimize(objective, initial, cfg.MaxEvaluations)
	if evalErr != nil {
		return nil, evalErr
	}
	if err != nil {
		return nil, err
	}

	gamma := append([]float64(nil), opt.X[:cfg.Layers]...)
	beta := append([]float64(nil), opt.X[cfg.Layers:]...)
	qasmText, err := circuit(g, gamma, beta, true).QASM()
	if err != nil {
		return nil, err
	}
	jd, err := s.Sample(qasmText, cfg.Shots)
	if err != nil {
		return nil, err
	}
	modal := modalBitstring(jd.Result.Counts)
	cut := g.cutValue(modal)
	best := g.bestCut()
	return &Result{
		Bitstring: modal,
		CutValue:  cut,
		BestCut:   best,
		Ratio:     float64(cut) / float64(best),
		Gamma:     gamma,
		Beta:      beta,
		Energy:    opt.F,
		Counts:    jd.Result.Counts,
		QASM:      qasmText,
	}, nil
}

// circuit is the H wall, then per layer the cost phases (ZZ via
// cx-rz-cx) and the RX mixer.
func circuit(g Graph, gamma, beta []float64, measured bool) *qasm.Builder {
	bits := 0
	if measured {
		bits = g.Nodes
	}
	b := qasm.NewBuilder(g.Nodes, bits)
	for q := 0; q < g.Nodes; q++ {
		b.H(q)
	}
	for k := range gamma {
		for _, e := range g.Edges {
			b.CX(e[0], e[1])
			b.RZ(2*gamma[k], e[1])
			b.CX(e[0], e[1])
		}
		for q := 0; q < g.Nodes; q++ {
			b.RX(2*beta[k], q)
		}
	}
	if measured {
		b.MeasureAll()
	}
	return b
}

// modalBitstring picks the most frequent key, smallest key on ties.
func modalBitstring(counts core.Counts) string {
	modal, hit := "", uint32(0)
	for key, c := range counts {
		if c > hit || (c == hit && (modal == "" || key < modal)) {
			modal, hit = key, c
		}
	}
	return modal
}
