package transpiler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/BrianOtieno/quantum-computing/core"
)

// PassTranspiler forwards every circuit untouched. The simulator runs
// all supported gates directly, so skipping the rewrite is safe and
// keeps demo circuits exactly as written.
type PassTranspiler struct{}

func (p *PassTranspiler) IsAcceptableTranspilerLib(_ string) bool {
	return true
}

func (p *PassTranspiler) Setup(_ *core.Conf) error {
	return nil
}

func (p *PassTranspiler) GetHealth() error {
	return nil
}

func (p *PassTranspiler) Transpile(j core.Job) error {
	zap.L().Debug(fmt.Sprintf("passing the job(%s) through without transpilation", j.JobData().ID))
	return nil
}

func (p *PassTranspiler) TearDown() {}
