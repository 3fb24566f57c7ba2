package qasm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseQASM builds a ProgramIR from OpenQASM 3 source. The accepted
// subset is the one the engine emits and executes: version header,
// include, qubit/bit declarations, gate calls with constant parameter
// expressions, measurement assignments, reset, barrier and the
// single-gate conditional "if (c[i] == v) gate ...;".
func ParseQASM(qasm string) (*ProgramIR, error) {
	if qasm == "" {
		return nil, fmt.Errorf("no input qasm")
	}
	p := newProgramIR()
	sawVersion := false
	for ln, rawLine := range strings.Split(qasm, "\n") {
		line := rawLine
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, frag := range splitStatements(line) {
			frag = strings.TrimSpace(frag)
			if frag == "" {
				continue
			}
			if !sawVersion {
				ver, ok := strings.CutPrefix(frag, "OPENQASM ")
				if !ok {
					return nil, fmt.Errorf("line %d: missing OPENQASM header", ln+1)
				}
				p.Version = strings.TrimSpace(ver)
				sawVersion = true
				continue
			}
			if err := p.parseStatement(frag, ln+1); err != nil {
				return nil, err
			}
		}
	}
	if !sawVersion {
		return nil, fmt.Errorf("missing OPENQASM header")
	}
	return p, nil
}

// splitStatements cuts a comment-free line into ";"-terminated
// statements. A trailing fragment without ";" is kept so the statement
// parser can report it.
func splitStatements(line string) []string {
	parts := strings.Split(line, ";")
	return parts
}

func (p *ProgramIR) parseStatement(s string, ln int) error {
	switch {
	case strings.HasPrefix(s, "include "):
		return nil
	case strings.HasPrefix(s, "qubit"):
		return p.parseDeclaration(s, ln, true)
	case strings.HasPrefix(s, "bit"):
		return p.parseDeclaration(s, ln, false)
	case strings.HasPrefix(s, "if"):
		return p.parseBranch(s, ln)
	case strings.HasPrefix(s, "reset "):
		return p.parseReset(s, ln)
	case strings.HasPrefix(s, "barrier"):
		return p.parseBarrier(s, ln)
	case strings.Contains(s, "measure"):
		return p.parseMeasureAssignment(s, ln)
	default:
		calls, err := p.parseGateCall(s, ln)
		if err != nil {
			return err
		}
		for _, call := range calls {
			p.Statements = append(p.Statements, call)
		}
		return nil
	}
}

func (p *ProgramIR) parseDeclaration(s string, ln int, quantum bool) error {
	keyword := "bit"
	if quantum {
		keyword = "qubit"
	}
	rest := strings.TrimPrefix(s, keyword)
	designator := 1
	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return fmt.Errorf("line %d: unclosed designator in %q", ln, s)
		}
		n, err := strconv.Atoi(strings.TrimSpace(rest[1:end]))
		if err != nil || n <= 0 {
			return fmt.Errorf("line %d: bad designator in %q", ln, s)
		}
		designator = n
		rest = rest[end+1:]
	}
	name := strings.TrimSpace(rest)
	if !isIdentifier(name) {
		return fmt.Errorf("line %d: bad %s identifier in %q", ln, keyword, s)
	}
	if quantum {
		p.Statements = append(p.Statements, &QuantumDeclarationStatementIR{
			Identifier: name,
			Designator: designator,
		})
		for i := 0; i < designator; i++ {
			p.QubitAbsNum[QCbitIdentifier{Name: name, Index: i}] = p.QubitCount
			p.QubitCount++
		}
		return nil
	}
	p.Statements = append(p.Statements, &ClassicalDeclarationStatementIR{
		Identifier: name,
		Designator: designator,
	})
	for i := 0; i < designator; i++ {
		p.BitAbsNum[QCbitIdentifier{Name: name, Index: i}] = p.BitCount
		p.BitCount++
	}
	return nil
}

func (p *ProgramIR) parseBranch(s string, ln int) error {
	rest := strings.TrimSpace(strings.TrimPrefix(s, "if"))
	if !strings.HasPrefix(rest, "(") {
		return fmt.Errorf("line %d: unknown statement %q", ln, s)
	}
	end := strings.Index(rest, ")")
	if end < 0 {
		return fmt.Errorf("line %d: unclosed condition in %q", ln, s)
	}
	cond := rest[1:end]
	body := strings.TrimSpace(rest[end+1:])

	lr := strings.Split(cond, "==")
	if len(lr) != 2 {
		return fmt.Errorf("line %d: unsupported condition %q", ln, cond)
	}
	bit, indexed, err := parseQCbitRef(strings.TrimSpace(lr[0]))
	if err != nil || !indexed {
		return fmt.Errorf("line %d: bad bit reference in condition %q", ln, cond)
	}
	val, err := strconv.Atoi(strings.TrimSpace(lr[1]))
	if err != nil || (val != 0 && val != 1) {
		return fmt.Errorf("line %d: bad comparison value in condition %q", ln, cond)
	}
	calls, err := p.parseGateCall(body, ln)
	if err != nil {
		return err
	}
	for _, call := range calls {
		p.Statements = append(p.Statements, &BranchStatementIR{
			Bit:  bit,
			Val:  val,
			Call: call,
		})
	}
	return nil
}

func (p *ProgramIR) parseReset(s string, ln int) error {
	target, indexed, err := parseQCbitRef(strings.TrimSpace(strings.TrimPrefix(s, "reset ")))
	if err != nil {
		return fmt.Errorf("line %d: bad reset target in %q", ln, s)
	}
	if !indexed {
		for i := 0; i < p.registerSize(target.Name); i++ {
			p.Statements = append(p.Statements, &ResetStatementIR{
				Target: QCbitIdentifier{Name: target.Name, Index: i},
			})
		}
		return nil
	}
	p.Statements = append(p.Statements, &ResetStatementIR{Target: target})
	return nil
}

func (p *ProgramIR) parseBarrier(s string, ln int) error {
	rest := strings.TrimSpace(strings.TrimPrefix(s, "barrier"))
	ops := []QCbitIdentifier{}
	if rest != "" {
		var err error
		ops, err = p.parseOperands(rest, ln)
		if err != nil {
			return err
		}
	}
	p.Statements = append(p.Statements, &BarrierStatementIR{Operands: ops})
	return nil
}

func (p *ProgramIR) parseMeasureAssignment(s string, ln int) error {
	lr := strings.SplitN(s, "=", 2)
	if len(lr) != 2 {
		return fmt.Errorf("line %d: unknown statement %q", ln, s)
	}
	rhs := strings.TrimSpace(lr[1])
	src, ok := strings.CutPrefix(rhs, "measure ")
	if !ok {
		return fmt.Errorf("line %d: unknown statement %q", ln, s)
	}
	left, leftIndexed, err := parseQCbitRef(strings.TrimSpace(lr[0]))
	if err != nil {
		return fmt.Errorf("line %d: bad assignment target in %q", ln, s)
	}
	right, rightIndexed, err := parseQCbitRef(strings.TrimSpace(src))
	if err != nil {
		return fmt.Errorf("line %d: bad measure operand in %q", ln, s)
	}
	if leftIndexed != rightIndexed {
		return fmt.Errorf("line %d: mixed register and bit operands in %q", ln, s)
	}
	if !leftIndexed {
		// register form, expanded bit by bit
		qn := p.registerSize(right.Name)
		if qn == 0 || qn != p.bitRegisterSize(left.Name) {
			return fmt.Errorf("line %d: register size mismatch in %q", ln, s)
		}
		for i := 0; i < qn; i++ {
			p.Statements = append(p.Statements, &AssignmentStatementIR{
				Left: QCbitIdentifier{Name: left.Name, Index: i},
				Right: MeasureExpressionIR{
					QCbitIdentifier: QCbitIdentifier{Name: right.Name, Index: i}},
			})
		}
		return nil
	}
	p.Statements = append(p.Statements, &AssignmentStatementIR{
		Left:  left,
		Right: MeasureExpressionIR{QCbitIdentifier: right},
	})
	return nil
}

func (p *ProgramIR) parseGateCall(s string, ln int) ([]*GateCallStatementIR, error) {
	name := s
	params := []float64(nil)
	operandPart := ""

	if i := strings.Index(s, "("); i >= 0 {
		end := strings.Index(s, ")")
		if end < i {
			return nil, fmt.Errorf("line %d: unclosed parameter list in %q", ln, s)
		}
		name = strings.TrimSpace(s[:i])
		var err error
		params, err = parseParams(s[i+1 : end])
		if err != nil {
			return nil, fmt.Errorf("line %d: %s in %q", ln, err.Error(), s)
		}
		operandPart = strings.TrimSpace(s[end+1:])
	} else if i := strings.IndexAny(s, " \t"); i >= 0 {
		name = s[:i]
		operandPart = strings.TrimSpace(s[i+1:])
	}
	if !isIdentifier(name) || operandPart == "" {
		return nil, fmt.Errorf("line %d: unknown statement %q", ln, s)
	}

	parts := strings.Split(operandPart, ",")
	if len(parts) == 1 {
		ref, indexed, err := parseQCbitRef(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad operand %q", ln, strings.TrimSpace(parts[0]))
		}
		if !indexed {
			// register broadcast, one call per qubit
			size := p.registerSize(ref.Name)
			if size == 0 {
				return nil, fmt.Errorf("line %d: undeclared register %q", ln, ref.Name)
			}
			calls := make([]*GateCallStatementIR, size)
			for i := 0; i < size; i++ {
				calls[i] = &GateCallStatementIR{
					GateName: name,
					Params:   params,
					Operands: []QCbitIdentifier{{Name: ref.Name, Index: i}},
				}
			}
			return calls, nil
		}
	}
	ops := make([]QCbitIdentifier, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		ref, indexed, err := parseQCbitRef(part)
		if err != nil || !indexed {
			return nil, fmt.Errorf("line %d: bad operand %q", ln, part)
		}
		ops = append(ops, ref)
	}
	return []*GateCallStatementIR{{
		GateName: name,
		Params:   params,
		Operands: ops,
	}}, nil
}

// parseOperands resolves a comma-separated operand list for barrier,
// which is n-ary. A bare register name is expanded to all its qubits.
func (p *ProgramIR) parseOperands(s string, ln int) ([]QCbitIdentifier, error) {
	ops := []QCbitIdentifier{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		ref, indexed, err := parseQCbitRef(part)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad operand %q", ln, part)
		}
		if indexed {
			ops = append(ops, ref)
			continue
		}
		size := p.registerSize(ref.Name)
		if size == 0 {
			return nil, fmt.Errorf("line %d: undeclared register %q", ln, ref.Name)
		}
		for i := 0; i < size; i++ {
			ops = append(ops, QCbitIdentifier{Name: ref.Name, Index: i})
		}
	}
	return ops, nil
}

func (p *ProgramIR) registerSize(name string) int {
	count := 0
	for id := range p.QubitAbsNum {
		if id.Name == name {
			count++
		}
	}
	return count
}

func (p *ProgramIR) bitRegisterSize(name string) int {
	count := 0
	for id := range p.BitAbsNum {
		if id.Name == name {
			count++
		}
	}
	return count
}

func parseQCbitRef(s string) (ref QCbitIdentifier, indexed bool, err error) {
	if i := strings.Index(s, "["); i >= 0 {
		if !strings.HasSuffix(s, "]") {
			return ref, false, fmt.Errorf("unclosed index in %q", s)
		}
		name := s[:i]
		if !isIdentifier(name) {
			return ref, false, fmt.Errorf("bad identifier in %q", s)
		}
		ind, err := strconv.Atoi(strings.TrimSpace(s[i+1 : len(s)-1]))
		if err != nil || ind < 0 {
			return ref, false, fmt.Errorf("bad index in %q", s)
		}
		return QCbitIdentifier{Name: name, Index: ind}, true, nil
	}
	if !isIdentifier(s) {
		return ref, false, fmt.Errorf("bad identifier %q", s)
	}
	return QCbitIdentifier{Name: s, Index: 0}, false, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func parseParams(s string) ([]float64, error) {
	params := []float64{}
	for _, part := range strings.Split(s, ",") {
		v, err := evalParamExpr(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		params = append(params, v)
	}
	return params, nil
}

// evalParamExpr evaluates a constant parameter expression. Gate angles
// in practice are pi fractions and literals, so the grammar is
// number | pi | -expr | expr op expr | (expr) with op in +-*/.
func evalParamExpr(s string) (float64, error) {
	e := &exprScanner{src: s}
	v, err := e.parseAddSub()
	if err != nil {
		return 0, err
	}
	e.skipSpace()
	if e.pos != len(e.src) {
		return 0, fmt.Errorf("bad parameter expression %q", s)
	}
	return v, nil
}

type exprScanner struct {
	src string
	pos int
}

func (e *exprScanner) skipSpace() {
	for e.pos < len(e.src) && (e.src[e.pos] == ' ' || e.src[e.pos] == '\t') {
		e.pos++
	}
}

func (e *exprScanner) parseAddSub() (float64, error) {
	v, err := e.parseMulDiv()
	if err != nil {
		return 0, err
	}
	for {
		e.skipSpace()
		if e.pos >= len(e.src) {
			return v, nil
		}
		switch e.src[e.pos] {
		case '+':
			e.pos++
			r, err := e.parseMulDiv()
			if err != nil {
				return 0, err
			}
			v += r
		case '-':
			e.pos++
			r, err := e.parseMulDiv()
			if err != nil {
				return 0, err
			}
			v -= r
		default:
			return v, nil
		}
	}
}

func (e *exprScanner) parseMulDiv() (float64, error) {
	v, err := e.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		e.skipSpace()
		if e.pos >= len(e.src) {
			return v, nil
		}
		switch e.src[e.pos] {
		case '*':
			e.pos++
			r, err := e.parseUnary()
			if err != nil {
				return 0, err
			}
			v *= r
		case '/':
			e.pos++
			r, err := e.parseUnary()
			if err != nil {
				return 0, err
			}
			if r == 0 {
				return 0, fmt.Errorf("division by zero in parameter expression")
			}
			v /= r
		default:
			return v, nil
		}
	}
}

func (e *exprScanner) parseUnary() (float64, error) {
	e.skipSpace()
	if e.pos < len(e.src) && e.src[e.pos] == '-' {
		e.pos++
		v, err := e.parseUnary()
		return -v, err
	}
	if e.pos < len(e.src) && e.src[e.pos] == '+' {
		e.pos++
		return e.parseUnary()
	}
	return e.parsePrimary()
}

func (e *exprScanner) parsePrimary() (float64, error) {
	e.skipSpace()
	if e.pos >= len(e.src) {
		return 0, fmt.Errorf("unexpected end of parameter expression")
	}
	if e.src[e.pos] == '(' {
		e.pos++
		v, err := e.parseAddSub()
		if err != nil {
			return 0, err
		}
		e.skipSpace()
		if e.pos >= len(e.src) || e.src[e.pos] != ')' {
			return 0, fmt.Errorf("unclosed parenthesis in parameter expression")
		}
		e.pos++
		return v, nil
	}
	c := e.src[e.pos]
	if (c >= '0' && c <= '9') || c == '.' {
		return e.parseNumber()
	}
	start := e.pos
	for e.pos < len(e.src) {
		c := e.src[e.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '_' {
			e.pos++
			continue
		}
		break
	}
	switch token := e.src[start:e.pos]; token {
	case "pi":
		return math.Pi, nil
	case "tau":
		return 2 * math.Pi, nil
	default:
		return 0, fmt.Errorf("bad parameter token %q", token)
	}
}

func (e *exprScanner) parseNumber() (float64, error) {
	start := e.pos
	for e.pos < len(e.src) {
		c := e.src[e.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			e.pos++
			continue
		}
		if c == 'e' || c == 'E' {
			e.pos++
			if e.pos < len(e.src) && (e.src[e.pos] == '+' || e.src[e.pos] == '-') {
				e.pos++
			}
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(e.src[start:e.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("bad parameter token %q", e.src[start:e.pos])
	}
	return v, nil
}
