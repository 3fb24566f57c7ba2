package main

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/BrianOtieno/quantum-computing/algo"
	"github.com/BrianOtieno/quantum-computing/algo/grover"
	"github.com/BrianOtieno/quantum-computing/algo/qaoa"
	"github.com/BrianOtieno/quantum-computing/algo/tomo"
	"github.com/BrianOtieno/quantum-computing/algo/vqe"
	"github.com/BrianOtieno/quantum-computing/common"
	"github.com/BrianOtieno/quantum-computing/qasm"
	"github.com/BrianOtieno/quantum-computing/statevec"
	"github.com/BrianOtieno/quantum-computing/visual"
)

// DemoOptions are the flags every demo command shares.
type DemoOptions struct {
	Shots int   `long:"shots" description:"number of shots" default:"1000"`
	Seed  int64 `long:"seed" description:"fixed simulator seed, 0 means time-based"`
}

// demoLogger keeps the engine at warn level so the demo output stays
// readable. An explicit debug level or dev mode wins.
func demoLogger() *zap.Logger {
	conf := *lab.Conf
	if !conf.DevMode && (conf.LogLevel == "" || conf.LogLevel == "info") {
		conf.LogLevel = "warn"
	}
	return setZap(&conf)
}

func newDemoSession(o DemoOptions) (*algo.Session, error) {
	return algo.NewSession(algo.Options{Shots: o.Shots, Seed: o.Seed})
}

func printCircuit(title, qasmText string) error {
	prog, err := qasm.ParseQASM(qasmText)
	if err != nil {
		return err
	}
	diagram, err := visual.CircuitDiagram(prog)
	if err != nil {
		return err
	}
	fmt.Printf("── %s ──\n%s\n", title, diagram)
	return nil
}

// prepProgram rebuilds the circuit without its readout so the state
// before measurement can be evolved. Circuits with conditionals have
// no single pre-readout state and report false.
func prepProgram(prog *qasm.ProgramIR) (*qasm.ProgramIR, bool) {
	b := qasm.NewBuilder(prog.QubitCount, 0)
	for _, s := range prog.Statements {
		switch st := s.(type) {
		case *qasm.QuantumDeclarationStatementIR, *qasm.ClassicalDeclarationStatementIR,
			*qasm.BarrierStatementIR, *qasm.AssignmentStatementIR:
		case *qasm.GateCallStatementIR:
			abs, err := prog.AbsQubits(st.Operands)
			if err != nil {
				return nil, false
			}
			b.GateP(st.GateName, st.Params, abs...)
		default:
			return nil, false
		}
	}
	ir, err := b.IR()
	if err != nil {
		return nil, false
	}
	return ir, true
}

func printIdealState(prog *qasm.ProgramIR) {
	ideal, ok := prepProgram(prog)
	if !ok {
		return
	}
	st, err := statevec.Evolve(ideal)
	if err != nil {
		return
	}
	fmt.Printf("state before readout:\n%s\n", visual.StateTable(st))
}

// runAssetDemo is the common flow of the circuit demos: draw the
// circuit, show the ideal state, then sample through the engine.
func runAssetDemo(title, asset string, o DemoOptions) error {
	text, err := common.GetAsset(asset)
	if err != nil {
		return err
	}
	prog, err := qasm.ParseQASM(text)
	if err != nil {
		return err
	}
	diagram, err := visual.CircuitDiagram(prog)
	if err != nil {
		return err
	}
	fmt.Printf("── %s ──\n%s\n", title, diagram)
	printIdealState(prog)

	s, err := newDemoSession(o)
	if err != nil {
		return err
	}
	defer s.Close()
	jd, err := s.Sample(text, o.Shots)
	if err != nil {
		return err
	}
	fmt.Printf("sampled %d shots:\n%s", jd.Shots, visual.Histogram(jd.Result.Counts, jd.Shots))
	return nil
}

type superpositionCmd struct {
	DemoOptions
}

func newSuperpositionCmd() *superpositionCmd {
	return &superpositionCmd{}
}

func (c *superpositionCmd) Execute(args []string) error {
	logger := demoLogger()
	defer logger.Sync()
	return runAssetDemo("superposition", "superposition.qasm", c.DemoOptions)
}

type bellCmd struct {
	DemoOptions
}

func newBellCmd() *bellCmd {
	return &bellCmd{}
}

func (c *bellCmd) Execute(args []string) error {
	logger := demoLogger()
	defer logger.Sync()
	return runAssetDemo("bell pair", "bell_pair.qasm", c.DemoOptions)
}

type ghzCmd struct {
	DemoOptions
}

func newGHZCmd() *ghzCmd {
	return &ghzCmd{}
}

func (c *ghzCmd) Execute(args []string) error {
	logger := demoLogger()
	defer logger.Sync()
	return runAssetDemo("ghz state", "ghz.qasm", c.DemoOptions)
}

type teleportCmd struct {
	DemoOptions
}

func newTeleportCmd() *teleportCmd {
	return &teleportCmd{}
}

func (c *teleportCmd) Execute(args []string) error {
	logger := demoLogger()
	defer logger.Sync()

	text, err := common.GetAsset("teleportation.qasm")
	if err != nil {
		return err
	}
	if err := printCircuit("teleportation", text); err != nil {
		return err
	}
	s, err := newDemoSession(c.DemoOptions)
	if err != nil {
		return err
	}
	defer s.Close()
	jd, err := s.Sample(text, c.Shots)
	if err != nil {
		return err
	}
	fmt.Printf("sampled %d shots:\n%s\n", jd.Shots, visual.Histogram(jd.Result.Counts, jd.Shots))

	// c2 is the leftmost bit of every counts key
	var ones, total uint32
	for key, count := range jd.Result.Counts {
		total += count
		if key[0] == '1' {
			ones += count
		}
	}
	fmt.Printf("the teleported qubit measured 1 in %d of %d shots (p=%.3f, ideal 0.200)\n",
		ones, total, float64(ones)/float64(total))
	return nil
}

type gatesCmd struct{}

func newGatesCmd() *gatesCmd {
	return &gatesCmd{}
}

func (c *gatesCmd) Execute(args []string) error {
	logger := demoLogger()
	defer logger.Sync()

	type tourEntry struct {
		name   string
		params []float64
	}
	tour := []tourEntry{
		{name: "h"}, {name: "x"}, {name: "y"}, {name: "z"},
		{name: "s"}, {name: "sdg"}, {name: "t"}, {name: "tdg"}, {name: "sx"},
		{name: "rx", params: []float64{math.Pi / 2}},
		{name: "ry", params: []float64{math.Pi / 2}},
		{name: "rz", params: []float64{math.Pi / 2}},
	}
	for _, e := range tour {
		label := e.name
		if len(e.params) > 0 {
			label = fmt.Sprintf("%s(%.4f)", e.name, e.params[0])
		}
		fmt.Printf("── %s ──\n", label)
		// phase gates only move |+>, so both starting states are shown
		for _, start := range []string{"0", "+"} {
			st, err := statevec.NewState(1)
			if err != nil {
				return err
			}
			if start == "+" {
				if err := st.Apply("h", nil, 0); err != nil {
					return err
				}
			}
			if err := st.Apply(e.name, e.params, 0); err != nil {
				return err
			}
			fmt.Printf("on |%s>:\n%s", start, visual.StateTable(st))
		}
		fmt.Println()
	}
	return nil
}

type groverCmd struct {
	DemoOptions
	Target string `long:"target" description:"bitstring to search for, qubit 0 rightmost" default:"10"`
}

func newGroverCmd() *groverCmd {
	return &groverCmd{}
}

func (c *groverCmd) Execute(args []string) error {
	logger := demoLogger()
	defer logger.Sync()

	s, err := newDemoSession(c.DemoOptions)
	if err != nil {
		return err
	}
	defer s.Close()
	r, err := grover.Run(s, c.Target, c.Shots)
	if err != nil {
		return err
	}
	if err := printCircuit("grover search", r.QASM); err != nil {
		return err
	}
	fmt.Printf("target %s after %d amplification rounds: probability %.3f, found=%t\n\n",
		r.Target, r.Iterations, r.Probability, r.Found)
	fmt.Print(visual.Histogram(r.Counts, 0))
	return nil
}

type vqeCmd struct {
	DemoOptions
	Reps           int  `long:"reps" description:"entangling blocks in the ansatz" default:"1"`
	MaxEvaluations int  `long:"max-evaluations" description:"objective call budget, 0 means the default"`
	Exact          bool `long:"exact" description:"evaluate energies on the statevector instead of sampling"`
}

func newVQECmd() *vqeCmd {
	return &vqeCmd{}
}

func (c *vqeCmd) Execute(args []string) error {
	logger := demoLogger()
	defer logger.Sync()

	var s *algo.Session
	if !c.Exact {
		var err error
		s, err = newDemoSession(c.DemoOptions)
		if err != nil {
			return err
		}
		defer s.Close()
	}

	fmt.Println("hamiltonian: molecular hydrogen on two qubits")
	for _, t := range vqe.Hamiltonian() {
		fmt.Printf("  %+.6f * %s\n", t.Coeff, t.Pauli)
	}
	fmt.Println()

	r, err := vqe.Run(s, vqe.Config{
		Reps:           c.Reps,
		Shots:          c.Shots,
		MaxEvaluations: c.MaxEvaluations,
		Exact:          c.Exact,
	})
	if err != nil {
		return err
	}
	if err := printCircuit("optimized ansatz", r.QASM); err != nil {
		return err
	}
	fmt.Printf("exact ground energy: %+.6f\n", r.ExactGround)
	fmt.Printf("variational energy:  %+.6f after %d evaluations\n", r.Energy, len(r.Trace))
	fmt.Printf("distance to ground:  %+.6f\n", r.Energy-r.ExactGround)
	return nil
}

type qaoaCmd struct {
	DemoOptions
	Nodes          int `long:"nodes" description:"size of the ring graph" default:"4"`
	Layers         int `long:"layers" description:"circuit depth p" default:"1"`
	MaxEvaluations int `long:"max-evaluations" description:"objective call budget, 0 means the default"`
}

func newQAOACmd() *qaoaCmd {
	return &qaoaCmd{}
}

func (c *qaoaCmd) Execute(args []string) error {
	logger := demoLogger()
	defer logger.Sync()

	s, err := newDemoSession(c.DemoOptions)
	if err != nil {
		return err
	}
	defer s.Close()
	r, err := qaoa.Run(s, qaoa.Config{
		Graph:          qaoa.Ring(c.Nodes),
		Layers:         c.Layers,
		Shots:          c.Shots,
		MaxEvaluations: c.MaxEvaluations,
	})
	if err != nil {
		return err
	}
	if err := printCircuit("qaoa maxcut", r.QASM); err != nil {
		return err
	}
	fmt.Printf("ring of %d nodes, depth p=%d\n", c.Nodes, c.Layers)
	fmt.Printf("gamma=%v beta=%v\n", r.Gamma, r.Beta)
	fmt.Printf("cost expectation %+.4f\n", r.Energy)
	fmt.Printf("modal cut %s: %d of the best %d edges (ratio %.2f)\n\n",
		r.Bitstring, r.CutValue, r.BestCut, r.Ratio)
	fmt.Print(visual.Histogram(r.Counts, 0))
	return nil
}

type tomoCmd struct {
	DemoOptions
	State string `long:"state" description:"state to reconstruct" default:"bell" choice:"bell" choice:"plus"`
}

func newTomoCmd() *tomoCmd {
	return &tomoCmd{}
}

func (c *tomoCmd) Execute(args []string) error {
	logger := demoLogger()
	defer logger.Sync()

	var text string
	switch c.State {
	case "plus":
		text = "OPENQASM 3;\nqubit[1] q;\nh q[0];\n"
	default:
		text = "OPENQASM 3;\nqubit[2] q;\nh q[0];\ncx q[0], q[1];\n"
	}
	if err := printCircuit("prepared state", text); err != nil {
		return err
	}

	s, err := newDemoSession(c.DemoOptions)
	if err != nil {
		return err
	}
	defer s.Close()
	r, err := tomo.Run(s, text, c.Shots)
	if err != nil {
		return err
	}
	fmt.Printf("measured %d bases at %d shots each\n", r.Bases, c.Shots)
	fmt.Printf("purity   %.4f\n", r.Purity)
	fmt.Printf("fidelity %.4f against the ideal state\n", r.Fidelity)
	fmt.Printf("reconstructed density matrix:\n%s", formatRho(r.Rho))
	return nil
}

func formatRho(rho *mat.CDense) string {
	rows, cols := rho.Dims()
	var sb strings.Builder
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := rho.At(i, j)
			sb.WriteString(fmt.Sprintf(" %+.3f%+.3fi", real(v), imag(v)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
