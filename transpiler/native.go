package transpiler

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/BrianOtieno/quantum-computing/qasm"
	"go.uber.org/zap"
)

// Angles within this distance of zero (mod 2*pi) are dropped entirely.
const angleEpsilon = 1e-9

// selfInverse lists the gates that cancel when two identical calls on the
// same operands are adjacent.
var selfInverse = map[string]struct{}{
	"h":    {},
	"x":    {},
	"y":    {},
	"z":    {},
	"cx":   {},
	"cz":   {},
	"swap": {},
}

type nativeOptions struct {
	BasisGates        []string `json:"basis_gates"`
	OptimizationLevel int      `json:"optimization_level"`
}

func defaultNativeOptions() nativeOptions {
	return nativeOptions{
		BasisGates:        []string{"sx", "rz", "cx"},
		OptimizationLevel: 1,
	}
}

// NativeTranspiler rewrites circuits for the local simulator without any
// external transpiler service. Passes run in a fixed order: pair
// cancellation, basis decomposition, rz merging, fidelity layout.
type NativeTranspiler struct{}

func (n *NativeTranspiler) IsAcceptableTranspilerLib(lib string) bool {
	return lib == "qlab_native"
}

func (n *NativeTranspiler) Setup(_ *core.Conf) error {
	zap.L().Debug("the native transpiler is ready")
	return nil
}

func (n *NativeTranspiler) GetHealth() error {
	return nil
}

func (n *NativeTranspiler) Transpile(j core.Job) error {
	jd := j.JobData()
	zap.L().Debug(fmt.Sprintf("transpile request/JobID:%s/TranspilerOptions:%s",
		jd.ID, string(jd.Transpiler.TranspilerOptions)))

	opts, err := parseNativeOptions(jd.Transpiler.TranspilerOptions)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse transpiler options of JobID:%s/reason:%s",
			jd.ID, err))
		return err
	}
	prog, err := qasm.ParseQASM(jd.QASM)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse the qasm of JobID:%s/reason:%s",
			jd.ID, err))
		return err
	}
	stmts, err := flatten(prog)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to flatten the circuit of JobID:%s/reason:%s",
			jd.ID, err))
		return err
	}
	gatesBefore := countGateCalls(stmts)

	if opts.OptimizationLevel > 0 {
		stmts = cancelAdjacentPairs(stmts)
	}
	stmts, err = decompose(stmts)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to decompose the circuit of JobID:%s/reason:%s",
			jd.ID, err))
		return err
	}
	if opts.OptimizationLevel > 0 {
		stmts = mergeRotations(stmts)
	}

	offset, err := bestWindow(core.GetSystemComponents().GetDeviceInfo(), prog.QubitCount)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to choose a layout for JobID:%s/reason:%s",
			jd.ID, err))
		return err
	}
	stmts = relabel(stmts, offset)

	out := &qasm.ProgramIR{Version: prog.Version}
	out.Statements = append(out.Statements,
		&qasm.QuantumDeclarationStatementIR{Identifier: "q", Designator: offset + prog.QubitCount})
	if prog.BitCount > 0 {
		out.Statements = append(out.Statements,
			&qasm.ClassicalDeclarationStatementIR{Identifier: "c", Designator: prog.BitCount})
	}
	out.Statements = append(out.Statements, stmts...)
	text, err := out.QASM()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to serialize the transpiled circuit of JobID:%s/reason:%s",
			jd.ID, err))
		return err
	}
	jd.TranspiledQASM = text

	vpm := make(core.VirtualPhysicalMappingMap, prog.QubitCount)
	pvm := make(core.PhysicalVirtualMapping, prog.QubitCount)
	for i := 0; i < prog.QubitCount; i++ {
		vpm[uint32(i)] = uint32(offset + i)
		pvm[uint32(offset+i)] = uint32(i)
	}
	raw, err := vpm.ToRaw()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal the qubit mapping:%v/reason:%s", vpm, err))
		return err
	}
	stats := transpileStats{
		Before: circuitStats{NQubits: prog.QubitCount, NGates: gatesBefore},
		After:  circuitStats{NQubits: offset + prog.QubitCount, NGates: countGateCalls(stmts)},
	}
	sb, err := json.Marshal(stats)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal transpile stats:%v/reason:%s", stats, err))
		return err
	}
	ti := jd.Result.TranspilerInfo
	ti.VirtualPhysicalMappingRaw = raw
	ti.VirtualPhysicalMappingMap = vpm
	ti.PhysicalVirtualMapping = pvm
	ti.StatsRaw = core.StatsRaw(sb)
	zap.L().Debug(fmt.Sprintf("transpiled JobID:%s/virtualPhysicalMapping:%s/stats:%s",
		jd.ID, raw.String(), string(sb)))
	zap.L().Debug(fmt.Sprintf("transpiled program:%s", jd.TranspiledQASM))
	return nil
}

func (n *NativeTranspiler) TearDown() {}

type transpileStats struct {
	Before circuitStats `json:"before"`
	After  circuitStats `json:"after"`
}

type circuitStats struct {
	NQubits int `json:"n_qubits"`
	NGates  int `json:"n_gates"`
}

func parseNativeOptions(raw json.RawMessage) (nativeOptions, error) {
	opts := defaultNativeOptions()
	if len(raw) == 0 {
		return opts, nil
	}
	if err := json.Unmarshal(raw, &opts); err != nil {
		return opts, err
	}
	if !isSupportedBasis(opts.BasisGates) {
		return opts, fmt.Errorf("unsupported basis gates:%v. only the sx/rz/cx basis is available",
			opts.BasisGates)
	}
	if opts.OptimizationLevel < 0 {
		return opts, fmt.Errorf("invalid optimization level:%d", opts.OptimizationLevel)
	}
	return opts, nil
}

func isSupportedBasis(gates []string) bool {
	if len(gates) != 3 {
		return false
	}
	seen := make(map[string]bool, 3)
	for _, g := range gates {
		seen[g] = true
	}
	return seen["sx"] && seen["rz"] && seen["cx"]
}

// flatten rewrites every statement onto the canonical registers q and c
// with absolute indices. Declarations are dropped and re-emitted later.
func flatten(p *qasm.ProgramIR) ([]qasm.StatementIR, error) {
	out := make([]qasm.StatementIR, 0, len(p.Statements))
	for _, s := range p.Statements {
		switch st := s.(type) {
		case *qasm.QuantumDeclarationStatementIR, *qasm.ClassicalDeclarationStatementIR:
		case *qasm.GateCallStatementIR:
			if err := p.CheckGateCall(st); err != nil {
				return nil, err
			}
			call, err := absCall(p, st)
			if err != nil {
				return nil, err
			}
			out = append(out, call)
		case *qasm.AssignmentStatementIR:
			q, err := p.AbsQubits([]qasm.QCbitIdentifier{st.Right.QCbitIdentifier})
			if err != nil {
				return nil, err
			}
			b, err := p.AbsBit(st.Left)
			if err != nil {
				return nil, err
			}
			out = append(out, &qasm.AssignmentStatementIR{
				Left:  qasm.QCbitIdentifier{Name: "c", Index: b},
				Right: qasm.MeasureExpressionIR{QCbitIdentifier: qasm.QCbitIdentifier{Name: "q", Index: q[0]}},
			})
		case *qasm.BranchStatementIR:
			if err := p.CheckGateCall(st.Call); err != nil {
				return nil, err
			}
			b, err := p.AbsBit(st.Bit)
			if err != nil {
				return nil, err
			}
			call, err := absCall(p, st.Call)
			if err != nil {
				return nil, err
			}
			out = append(out, &qasm.BranchStatementIR{
				Bit:  qasm.QCbitIdentifier{Name: "c", Index: b},
				Val:  st.Val,
				Call: call,
			})
		case *qasm.ResetStatementIR:
			q, err := p.AbsQubits([]qasm.QCbitIdentifier{st.Target})
			if err != nil {
				return nil, err
			}
			out = append(out, &qasm.ResetStatementIR{
				Target: qasm.QCbitIdentifier{Name: "q", Index: q[0]},
			})
		case *qasm.BarrierStatementIR:
			abs, err := p.AbsQubits(st.Operands)
			if err != nil {
				return nil, err
			}
			ops := make([]qasm.QCbitIdentifier, len(abs))
			for i, a := range abs {
				ops[i] = qasm.QCbitIdentifier{Name: "q", Index: a}
			}
			out = append(out, &qasm.BarrierStatementIR{Operands: ops})
		default:
			return nil, fmt.Errorf("unsupported statement type %T", s)
		}
	}
	return out, nil
}

func absCall(p *qasm.ProgramIR, c *qasm.GateCallStatementIR) (*qasm.GateCallStatementIR, error) {
	abs, err := p.AbsQubits(c.Operands)
	if err != nil {
		return nil, err
	}
	ops := make([]qasm.QCbitIdentifier, len(abs))
	for i, a := range abs {
		ops[i] = qasm.QCbitIdentifier{Name: "q", Index: a}
	}
	return &qasm.GateCallStatementIR{
		GateName: c.GateName,
		Params:   append([]float64(nil), c.Params...),
		Operands: ops,
	}, nil
}

func cancelAdjacentPairs(stmts []qasm.StatementIR) []qasm.StatementIR {
	out := make([]qasm.StatementIR, 0, len(stmts))
	for _, s := range stmts {
		call, ok := s.(*qasm.GateCallStatementIR)
		if !ok {
			out = append(out, s)
			continue
		}
		if _, self := selfInverse[call.GateName]; self && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*qasm.GateCallStatementIR); ok && sameCall(prev, call) {
				out = out[:len(out)-1]
				continue
			}
		}
		out = append(out, call)
	}
	return out
}

func sameCall(a, b *qasm.GateCallStatementIR) bool {
	if a.GateName != b.GateName || len(a.Operands) != len(b.Operands) {
		return false
	}
	for i := range a.Operands {
		if a.Operands[i] != b.Operands[i] {
			return false
		}
	}
	return true
}

func decompose(stmts []qasm.StatementIR) ([]qasm.StatementIR, error) {
	out := make([]qasm.StatementIR, 0, len(stmts))
	for _, s := range stmts {
		switch st := s.(type) {
		case *qasm.GateCallStatementIR:
			calls, err := toBasis(st)
			if err != nil {
				return nil, err
			}
			for _, c := range calls {
				out = append(out, c)
			}
		case *qasm.BranchStatementIR:
			calls, err := toBasis(st.Call)
			if err != nil {
				return nil, err
			}
			for _, c := range calls {
				out = append(out, &qasm.BranchStatementIR{Bit: st.Bit, Val: st.Val, Call: c})
			}
		default:
			out = append(out, s)
		}
	}
	return out, nil
}

func toBasis(c *qasm.GateCallStatementIR) ([]*qasm.GateCallStatementIR, error) {
	switch c.GateName {
	case "sx", "rz", "cx":
		return []*qasm.GateCallStatementIR{c}, nil
	}
	exp, err := expandOnce(c)
	if err != nil {
		return nil, err
	}
	out := make([]*qasm.GateCallStatementIR, 0, len(exp))
	for _, e := range exp {
		basis, err := toBasis(e)
		if err != nil {
			return nil, err
		}
		out = append(out, basis...)
	}
	return out, nil
}

// expandOnce rewrites one call into an equivalent sequence of basis gates
// and h/t/tdg intermediates. Global phase is not tracked.
func expandOnce(c *qasm.GateCallStatementIR) ([]*qasm.GateCallStatementIR, error) {
	ops := c.Operands
	switch c.GateName {
	case "h":
		// h = rz(pi/2) sx rz(pi/2)
		q := ops[0]
		return []*qasm.GateCallStatementIR{
			rzCall(math.Pi/2, q), gateCall("sx", q), rzCall(math.Pi/2, q),
		}, nil
	case "x":
		q := ops[0]
		return []*qasm.GateCallStatementIR{gateCall("sx", q), gateCall("sx", q)}, nil
	case "y":
		q := ops[0]
		return []*qasm.GateCallStatementIR{
			rzCall(math.Pi, q), gateCall("sx", q), gateCall("sx", q),
		}, nil
	case "z":
		return []*qasm.GateCallStatementIR{rzCall(math.Pi, ops[0])}, nil
	case "s":
		return []*qasm.GateCallStatementIR{rzCall(math.Pi/2, ops[0])}, nil
	case "sdg":
		return []*qasm.GateCallStatementIR{rzCall(-math.Pi/2, ops[0])}, nil
	case "t":
		return []*qasm.GateCallStatementIR{rzCall(math.Pi/4, ops[0])}, nil
	case "tdg":
		return []*qasm.GateCallStatementIR{rzCall(-math.Pi/4, ops[0])}, nil
	case "rx":
		// rx(t) = rz(pi/2) sx rz(t+pi) sx rz(pi/2)
		q := ops[0]
		theta := c.Params[0]
		return []*qasm.GateCallStatementIR{
			rzCall(math.Pi/2, q), gateCall("sx", q), rzCall(theta+math.Pi, q),
			gateCall("sx", q), rzCall(math.Pi/2, q),
		}, nil
	case "ry":
		// ry(t) = sx rz(t+pi) sx rz(pi) in execution order
		q := ops[0]
		theta := c.Params[0]
		return []*qasm.GateCallStatementIR{
			gateCall("sx", q), rzCall(theta+math.Pi, q), gateCall("sx", q), rzCall(math.Pi, q),
		}, nil
	case "cz":
		a, b := ops[0], ops[1]
		return []*qasm.GateCallStatementIR{
			gateCall("h", b), gateCall("cx", a, b), gateCall("h", b),
		}, nil
	case "swap":
		a, b := ops[0], ops[1]
		return []*qasm.GateCallStatementIR{
			gateCall("cx", a, b), gateCall("cx", b, a), gateCall("cx", a, b),
		}, nil
	case "ccx":
		a, b, t := ops[0], ops[1], ops[2]
		return []*qasm.GateCallStatementIR{
			gateCall("h", t),
			gateCall("cx", b, t), gateCall("tdg", t),
			gateCall("cx", a, t), gateCall("t", t),
			gateCall("cx", b, t), gateCall("tdg", t),
			gateCall("cx", a, t), gateCall("t", b), gateCall("t", t), gateCall("h", t),
			gateCall("cx", a, b), gateCall("t", a), gateCall("tdg", b),
			gateCall("cx", a, b),
		}, nil
	default:
		return nil, fmt.Errorf("cannot decompose gate %s into the sx/rz/cx basis", c.GateName)
	}
}

func gateCall(name string, ops ...qasm.QCbitIdentifier) *qasm.GateCallStatementIR {
	return &qasm.GateCallStatementIR{GateName: name, Operands: ops}
}

func rzCall(theta float64, op qasm.QCbitIdentifier) *qasm.GateCallStatementIR {
	return &qasm.GateCallStatementIR{
		GateName: "rz",
		Params:   []float64{theta},
		Operands: []qasm.QCbitIdentifier{op},
	}
}

func mergeRotations(stmts []qasm.StatementIR) []qasm.StatementIR {
	out := make([]qasm.StatementIR, 0, len(stmts))
	for _, s := range stmts {
		call, ok := s.(*qasm.GateCallStatementIR)
		if !ok || call.GateName != "rz" {
			out = append(out, s)
			continue
		}
		theta := call.Params[0]
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(*qasm.GateCallStatementIR); ok &&
				prev.GateName == "rz" && prev.Operands[0] == call.Operands[0] {
				theta += prev.Params[0]
				out = out[:len(out)-1]
			}
		}
		theta = normalizeAngle(theta)
		if math.Abs(theta) < angleEpsilon {
			continue
		}
		out = append(out, rzCall(theta, call.Operands[0]))
	}
	return out
}

func normalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta > math.Pi {
		theta -= 2 * math.Pi
	} else if theta <= -math.Pi {
		theta += 2 * math.Pi
	}
	return theta
}

// bestWindow picks the contiguous physical window with the highest mean
// single-qubit fidelity and returns its first physical index. Devices
// without calibration fall back to the identity layout.
func bestWindow(di *core.DeviceInfo, qubits int) (int, error) {
	if qubits == 0 {
		return 0, nil
	}
	if di == nil || di.DeviceInfoSpecJson == "" {
		zap.L().Debug("no device calibration is available. using the identity layout")
		return 0, nil
	}
	var spec core.DeviceInfoSpec
	if err := json.Unmarshal([]byte(di.DeviceInfoSpecJson), &spec); err != nil {
		return 0, fmt.Errorf("failed to unmarshal the device calibration:%s", err)
	}
	if len(spec.Qubits) == 0 {
		zap.L().Debug("the device calibration has no qubits. using the identity layout")
		return 0, nil
	}
	if qubits > len(spec.Qubits) {
		return 0, fmt.Errorf("the circuit needs %d qubits but the calibration has only %d",
			qubits, len(spec.Qubits))
	}
	sort.Slice(spec.Qubits, func(i, j int) bool { return spec.Qubits[i].ID < spec.Qubits[j].ID })
	best, bestMean := -1, math.Inf(-1)
	for start := 0; start+qubits <= len(spec.Qubits); start++ {
		// windows with holes in the physical numbering cannot be
		// reached by an index shift
		if spec.Qubits[start+qubits-1].ID != spec.Qubits[start].ID+qubits-1 {
			continue
		}
		sum := 0.0
		for i := start; i < start+qubits; i++ {
			sum += spec.Qubits[i].Fidelity
		}
		if mean := sum / float64(qubits); mean > bestMean {
			best, bestMean = start, mean
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("the calibration has no contiguous window of %d qubits", qubits)
	}
	return spec.Qubits[best].ID, nil
}

func relabel(stmts []qasm.StatementIR, offset int) []qasm.StatementIR {
	if offset == 0 {
		return stmts
	}
	out := make([]qasm.StatementIR, 0, len(stmts))
	for _, s := range stmts {
		switch st := s.(type) {
		case *qasm.GateCallStatementIR:
			out = append(out, shiftCall(st, offset))
		case *qasm.BranchStatementIR:
			out = append(out, &qasm.BranchStatementIR{
				Bit:  st.Bit,
				Val:  st.Val,
				Call: shiftCall(st.Call, offset),
			})
		case *qasm.AssignmentStatementIR:
			out = append(out, &qasm.AssignmentStatementIR{
				Left:  st.Left,
				Right: qasm.MeasureExpressionIR{QCbitIdentifier: shiftQubit(st.Right.QCbitIdentifier, offset)},
			})
		case *qasm.ResetStatementIR:
			out = append(out, &qasm.ResetStatementIR{Target: shiftQubit(st.Target, offset)})
		case *qasm.BarrierStatementIR:
			ops := make([]qasm.QCbitIdentifier, len(st.Operands))
			for i, op := range st.Operands {
				ops[i] = shiftQubit(op, offset)
			}
			out = append(out, &qasm.BarrierStatementIR{Operands: ops})
		default:
			out = append(out, s)
		}
	}
	return out
}

func shiftCall(c *qasm.GateCallStatementIR, offset int) *qasm.GateCallStatementIR {
	ops := make([]qasm.QCbitIdentifier, len(c.Operands))
	for i, op := range c.Operands {
		ops[i] = shiftQubit(op, offset)
	}
	return &qasm.GateCallStatementIR{GateName: c.GateName, Params: c.Params, Operands: ops}
}

func shiftQubit(id qasm.QCbitIdentifier, offset int) qasm.QCbitIdentifier {
	return qasm.QCbitIdentifier{Name: id.Name, Index: id.Index + offset}
}

func countGateCalls(stmts []qasm.StatementIR) int {
	n := 0
	for _, s := range stmts {
		switch s.(type) {
		case *qasm.GateCallStatementIR, *qasm.BranchStatementIR:
			n++
		}
	}
	return n
}
