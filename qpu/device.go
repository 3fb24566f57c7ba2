package qpu

import (
	"fmt"
	"time"

	"github.com/BrianOtieno/quantum-computing/common"
	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/BrianOtieno/quantum-computing/statevec"
	"github.com/BurntSushi/toml"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

type DeviceSetting struct {
	DeviceName   string       `toml:"device_name"`
	DeviceType   string       `toml:"device_type"`
	ProviderName string       `toml:"provider_name"`
	MaxQubits    int          `toml:"max_qubits"`
	MaxShots     int          `toml:"max_shots"`
	NoisePreset  string       `toml:"noise_preset"`
	QASMSupport  *QASMSupport `toml:"qasm_support"`
}

type QASMSupport struct {
	AllowList *QASMFilter `toml:"allow_list"`
	DenyList  *QASMFilter `toml:"deny_list"`
}

func LoadDeviceSetting(path string) (*DeviceSetting, error) {
	blob, assetErr := common.ReadFile(path)
	ds := NewDeviceSetting()
	if assetErr != nil {
		zap.L().Info(fmt.Sprintf("Failed to read file:%s Reason:%s", path, assetErr))
		return ds, nil
	}
	if _, err := toml.Decode(blob, ds); err != nil {
		zap.L().Error(fmt.Sprintf("failed to decode blob:%s", blob))
		return &DeviceSetting{}, err
	}
	if ds.MaxQubits > statevec.MAX_SIMULATED_QUBITS {
		return &DeviceSetting{}, fmt.Errorf("max_qubits:%d is over the simulator limit:%d",
			ds.MaxQubits, statevec.MAX_SIMULATED_QUBITS)
	}
	if _, err := presetProfile(ds.NoisePreset); err != nil {
		return &DeviceSetting{}, err
	}
	return ds, nil
}

func NewDeviceSetting() *DeviceSetting {
	return &DeviceSetting{
		DeviceName:   "local_sim",
		DeviceType:   "simulator",
		ProviderName: "qlab",
		MaxQubits:    10,
		MaxShots:     10000,
		NoisePreset:  "ideal",
		QASMSupport:  NewQasmSupport(),
	}
}

func NewQasmSupport() *QASMSupport {
	return &QASMSupport{
		AllowList: &QASMFilter{},
		DenyList:  &QASMFilter{},
	}
}

func NewQasmSupportWithAllowList(q *QASMFilter) *QASMSupport {
	return &QASMSupport{
		AllowList: q,
		DenyList:  &QASMFilter{},
	}
}

func NewQasmSupportWithDenyList(q *QASMFilter) *QASMSupport {
	return &QASMSupport{
		AllowList: &QASMFilter{},
		DenyList:  q,
	}
}

type QASMFilter struct {
	Enabled    bool
	Statements []*QASMStatementType `toml:"statements"`
	Gates      []*QASMGateType      `toml:"gates"`
}

type QASMStatementType struct {
	Name string
}

func (q *QASMStatementType) String() string {
	return q.Name
}

type QASMGateType struct {
	Name string
}

func (q *QASMGateType) String() string {
	return q.Name
}

type noiseProfile struct {
	p10          float64
	p01          float64
	gateFidelity float64
	cxFidelity   float64
}

// presetProfile maps a noise preset name to its per-qubit readout flip
// probabilities and the fidelities written into the calibration.
// "ideal" means no readout error at all.
func presetProfile(preset string) (*noiseProfile, error) {
	switch preset {
	case "", "ideal":
		return &noiseProfile{gateFidelity: 1.0, cxFidelity: 1.0}, nil
	case "light":
		return &noiseProfile{p10: 0.01, p01: 0.01, gateFidelity: 0.999, cxFidelity: 0.99}, nil
	case "realistic":
		return &noiseProfile{p10: 0.02, p01: 0.04, gateFidelity: 0.995, cxFidelity: 0.98}, nil
	case "heavy":
		return &noiseProfile{p10: 0.05, p01: 0.08, gateFidelity: 0.99, cxFidelity: 0.95}, nil
	default:
		return nil, fmt.Errorf("unknown noise preset:%s", preset)
	}
}

// readoutForPreset builds the simulator readout-error model covering
// every qubit of the device. A nil model means ideal readout.
func readoutForPreset(preset string, qubits int) (*statevec.ReadoutError, error) {
	np, err := presetProfile(preset)
	if err != nil {
		return nil, err
	}
	if np.p10 == 0 && np.p01 == 0 {
		return nil, nil
	}
	re := &statevec.ReadoutError{
		P10: make([]float64, qubits),
		P01: make([]float64, qubits),
	}
	for i := 0; i < qubits; i++ {
		re.P10[i] = np.p10
		re.P01[i] = np.p01
	}
	return re, nil
}

// buildDeviceInfo synthesizes the full device descriptor for a device
// setting, calibration JSON included. The coupling map is a line
// topology and the per-qubit figures decline slightly with the index,
// so fidelity-driven layout always has a best window to find.
func buildDeviceInfo(ds *DeviceSetting) (*core.DeviceInfo, error) {
	np, err := presetProfile(ds.NoisePreset)
	if err != nil {
		return nil, err
	}
	spec := core.DeviceInfoSpec{
		DeviceID: ds.DeviceName,
		Qubits:   make([]core.Qubit, ds.MaxQubits),
	}
	for i := 0; i < ds.MaxQubits; i++ {
		spec.Qubits[i] = core.Qubit{
			ID:         i,
			PhysicalID: i,
			Position:   core.Position{X: float64(i), Y: 0},
			Fidelity:   np.gateFidelity - 0.0003*float64(i),
			MeasError: core.MeasError{
				ProbMeas1Prep0:         np.p10,
				ProbMeas0Prep1:         np.p01,
				ReadoutAssignmentError: (np.p10 + np.p01) / 2,
			},
			QubitLife: core.QubitLife{
				T1: 40.0 - 0.5*float64(i),
				T2: 25.0 - 0.3*float64(i),
			},
			GateDur: core.GateDur{RZ: 0, SX: 20, X: 40},
		}
	}
	for i := 0; i < ds.MaxQubits-1; i++ {
		spec.Couplings = append(spec.Couplings, core.Coupling{
			Control:  i,
			Target:   i + 1,
			Fidelity: np.cxFidelity - 0.0005*float64(i),
		})
	}
	specJson, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(spec)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal a device info spec. Reason:%s", err))
		return nil, err
	}
	return &core.DeviceInfo{
		DeviceName:         ds.DeviceName,
		ProviderName:       ds.ProviderName,
		Type:               ds.DeviceType,
		Status:             core.Available,
		MaxQubits:          ds.MaxQubits,
		MaxShots:           ds.MaxShots,
		BasisGates:         []string{"sx", "rz", "cx"},
		DeviceInfoSpecJson: specJson,
		CalibratedAt:       time.Now().UTC().Format(time.RFC3339),
	}, nil
}
