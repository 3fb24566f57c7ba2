package mitig

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/BrianOtieno/quantum-computing/core"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

const PSEUDO_INVERSE = "pseudo_inverse"

// Counts keys wider than this would make the probability vector explode.
const maxMitigatedBits = 20

const singularValueCutoff = 1e-12

type MitigationInfo struct {
	NeedToBeMitigated bool `json:"-"`
	Mitigated         bool `json:"-"`

	Readout string `json:"readout"`
}

func NewMitigationInfoFromJobData(jd *core.JobData) *MitigationInfo {
	m := MitigationInfo{
		Mitigated: false,
	}
	m.NeedToBeMitigated = false
	if jd.MitigationInfo == "" {
		zap.L().Debug(fmt.Sprintf("JobID:%s MitigationInfo is empty, assuming no mitigation", jd.ID))
		return &m
	}
	if err := json.Unmarshal([]byte(jd.MitigationInfo), &m); err != nil {
		zap.L().Warn(fmt.Sprintf("failed to unmarshal MitigationInfo from:%s, assuming no mitigation/reason:%s",
			jd.MitigationInfo, err))
		return &m
	}
	if m.Readout == PSEUDO_INVERSE {
		zap.L().Debug(fmt.Sprintf("JobID:%s needs to be mitigated", jd.ID))
		m.NeedToBeMitigated = true
	} else {
		zap.L().Debug(fmt.Sprintf("JobID:%s does not need to be mitigated", jd.ID))
	}
	return &m
}

// PseudoInverseMitigation corrects the readout errors in the counts of a
// finished job. Each measured bit gets the 2x2 assignment matrix of the
// physical qubit it was read from, the matrix is pseudo-inverted and applied
// along that bit axis of the count distribution. Negative quasi-counts are
// clamped to zero and the distribution is rescaled to the original shot total.
func PseudoInverseMitigation(jd *core.JobData) {
	octs := jd.Result.Counts
	zap.L().Debug(fmt.Sprintf("original counts:%v", octs))
	numOfBits, err := getNumOfBits(octs)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to get the number of measured bits of a job(%s). Reason:%s",
			jd.ID, err.Error()))
		jd.Status = core.FAILED
		return
	}
	if numOfBits > maxMitigatedBits {
		zap.L().Error(fmt.Sprintf("cannot mitigate the counts of a job(%s) with %d bits. the limit is %d",
			jd.ID, numOfBits, maxMitigatedBits))
		jd.Status = core.FAILED
		return
	}
	measErrors, err := deviceMeasErrors()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to get the device readout errors for a job(%s). Reason:%s",
			jd.ID, err.Error()))
		jd.Status = core.FAILED
		return
	}
	vpm := measuredQubitMapping(jd)
	zap.L().Debug(fmt.Sprintf("VirtualPhysicalMapping:%v", vpm))

	vec := make([]float64, 1<<numOfBits)
	shots := float64(0)
	for k, v := range octs {
		idx, perr := strconv.ParseUint(k, 2, 64)
		if perr != nil {
			zap.L().Error(fmt.Sprintf("failed to parse a counts key %q of a job(%s). Reason:%s",
				k, jd.ID, perr.Error()))
			jd.Status = core.FAILED
			return
		}
		vec[idx] += float64(v)
		shots += float64(v)
	}

	// Bit i of a counts key is the i-th character from the right and is read
	// from the physical qubit the i-th virtual qubit was placed on.
	for bit := 0; bit < numOfBits; bit++ {
		physical, ok := vpm[uint32(bit)]
		if !ok {
			physical = uint32(bit)
		}
		merr, ok := measErrors[physical]
		if !ok {
			zap.L().Debug(fmt.Sprintf("no readout error is calibrated for the physical qubit %d. skipping", physical))
			continue
		}
		inv, ierr := pseudoInverse(assignmentMatrix(merr))
		if ierr != nil {
			zap.L().Error(fmt.Sprintf("failed to invert the assignment matrix of the physical qubit %d. Reason:%s",
				physical, ierr.Error()))
			jd.Status = core.FAILED
			return
		}
		applyToBit(vec, inv, bit)
	}

	total := float64(0)
	for i, v := range vec {
		if v < 0 {
			vec[i] = 0
			continue
		}
		total += v
	}
	if total <= 0 {
		zap.L().Error(fmt.Sprintf("the mitigated distribution of a job(%s) is empty", jd.ID))
		jd.Status = core.FAILED
		return
	}
	mcts := make(core.Counts)
	for i, v := range vec {
		c := uint32(math.Round(v / total * shots))
		if c == 0 {
			continue
		}
		mcts[fmt.Sprintf("%0*b", numOfBits, i)] = c
	}
	zap.L().Debug(fmt.Sprintf("mitigated counts:%v", mcts))
	jd.Result.Counts = mcts
	jd.Status = core.SUCCEEDED
}

func getNumOfBits(counts core.Counts) (int, error) {
	if len(counts) == 0 {
		return 0, fmt.Errorf("counts is empty")
	}
	candidateNum := 0
	for k := range counts {
		if candidateNum == 0 {
			candidateNum = len(k)
		} else {
			if candidateNum != len(k) {
				return 0, fmt.Errorf("different length of keys in counts")
			}
		}
	}
	return candidateNum, nil
}

func deviceMeasErrors() (map[uint32]core.MeasError, error) {
	disj := core.GetSystemComponents().GetDeviceInfo().DeviceInfoSpecJson
	var dis core.DeviceInfoSpec
	if err := json.Unmarshal([]byte(disj), &dis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the device calibration:%s", err)
	}
	measErrors := make(map[uint32]core.MeasError)
	for _, q := range dis.Qubits {
		measErrors[uint32(q.ID)] = q.MeasError
	}
	return measErrors, nil
}

func measuredQubitMapping(jd *core.JobData) core.VirtualPhysicalMappingMap {
	ti := jd.Result.TranspilerInfo
	if ti == nil {
		return core.VirtualPhysicalMappingMap{}
	}
	if len(ti.VirtualPhysicalMappingMap) > 0 {
		return ti.VirtualPhysicalMappingMap
	}
	if len(ti.VirtualPhysicalMappingRaw) > 0 {
		vpm, err := ti.VirtualPhysicalMappingRaw.ToMap()
		if err != nil {
			zap.L().Warn(fmt.Sprintf("failed to parse the virtual physical mapping:%s. using the identity mapping",
				string(ti.VirtualPhysicalMappingRaw)))
			return core.VirtualPhysicalMappingMap{}
		}
		return vpm
	}
	return core.VirtualPhysicalMappingMap{}
}

// assignmentMatrix returns the readout assignment matrix of one qubit.
// Columns are prepared states, rows are measured states.
func assignmentMatrix(e core.MeasError) *mat.Dense {
	return mat.NewDense(2, 2, []float64{
		1 - e.ProbMeas1Prep0, e.ProbMeas0Prep1,
		e.ProbMeas1Prep0, 1 - e.ProbMeas0Prep1,
	})
}

func pseudoInverse(a *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, fmt.Errorf("failed to factorize the assignment matrix")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)
	sigmaInv := mat.NewDense(len(values), len(values), nil)
	for i, s := range values {
		if s > singularValueCutoff {
			sigmaInv.Set(i, i, 1/s)
		}
	}
	var pinv mat.Dense
	pinv.Product(&v, sigmaInv, u.T())
	return &pinv, nil
}

// applyToBit multiplies m into the count distribution along one bit axis.
func applyToBit(vec []float64, m *mat.Dense, bit int) {
	stride := 1 << bit
	for base := 0; base < len(vec); base += stride * 2 {
		for offset := 0; offset < stride; offset++ {
			i0 := base + offset
			i1 := i0 + stride
			v0 := m.At(0, 0)*vec[i0] + m.At(0, 1)*vec[i1]
			v1 := m.At(1, 0)*vec[i0] + m.At(1, 1)*vec[i1]
			vec[i0] = v0
			vec[i1] = v1
		}
	}
}
