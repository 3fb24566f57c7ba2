package algo

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"
)

// Minimize runs a derivative-free minimization with NelderMead and
// falls back to BFGS on finite differences when the first attempt does
// not land in an accepted status. maxEvaluations bounds the objective
// calls; zero means unlimited.
func Minimize(objective func([]float64) float64, initial []float64, maxEvaluations int) (*optimize.Result, error) {
	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{}
	if maxEvaluations > 0 {
		settings.FuncEvaluations = maxEvaluations
	}
	result, err := optimize.Minimize(problem, initial, settings, &optimize.NelderMead{})
	if err == nil && acceptedStatus(result.Status, maxEvaluations > 0) {
		return result, nil
	}
	result, err = optimize.Minimize(problem, initial, settings, &optimize.BFGS{})
	if err != nil {
		return nil, fmt.Errorf("optimization failed: %w", err)
	}
	if !acceptedStatus(result.Status, maxEvaluations > 0) {
		return nil, fmt.Errorf("optimization did not converge: status=%v", result.Status)
	}
	return result, nil
}

// Hitting the evaluation budget counts as done when one was set, since
// sampled objectives never settle below the shot noise floor.
func acceptedStatus(status optimize.Status, budgeted bool) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence:
		return true
	case optimize.FunctionEvaluationLimit:
		return budgeted
	}
	return false
}
