package qasm

import (
	"fmt"
)

// GateSpec fixes the operand and parameter count of a standard gate.
type GateSpec struct {
	Operands int
	Params   int
}

// StandardGates is the gate set the engine understands end to end.
var StandardGates = map[string]GateSpec{
	"h":    {Operands: 1},
	"x":    {Operands: 1},
	"y":    {Operands: 1},
	"z":    {Operands: 1},
	"s":    {Operands: 1},
	"sdg":  {Operands: 1},
	"t":    {Operands: 1},
	"tdg":  {Operands: 1},
	"sx":   {Operands: 1},
	"rx":   {Operands: 1, Params: 1},
	"ry":   {Operands: 1, Params: 1},
	"rz":   {Operands: 1, Params: 1},
	"cx":   {Operands: 2},
	"cz":   {Operands: 2},
	"swap": {Operands: 2},
	"ccx":  {Operands: 3},
}

// LookupGate returns the GateSpec for a standard gate name.
func LookupGate(name string) (GateSpec, bool) {
	spec, ok := StandardGates[name]
	return spec, ok
}

// CheckGateCall validates a call against the standard gate table.
func (p *ProgramIR) CheckGateCall(c *GateCallStatementIR) error {
	spec, ok := LookupGate(c.GateName)
	if !ok {
		return fmt.Errorf("unknown gate %q", c.GateName)
	}
	if len(c.Operands) != spec.Operands {
		return fmt.Errorf("gate %s takes %d operand(s), got %d",
			c.GateName, spec.Operands, len(c.Operands))
	}
	if len(c.Params) != spec.Params {
		return fmt.Errorf("gate %s takes %d parameter(s), got %d",
			c.GateName, spec.Params, len(c.Params))
	}
	abs, err := p.AbsQubits(c.Operands)
	if err != nil {
		return err
	}
	seen := map[int]struct{}{}
	for _, q := range abs {
		if _, dup := seen[q]; dup {
			return fmt.Errorf("gate %s has duplicate operands", c.GateName)
		}
		seen[q] = struct{}{}
	}
	return nil
}
