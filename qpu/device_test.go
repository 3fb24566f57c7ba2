//go:build unit
// +build unit

package qpu

import (
	"encoding/json"
	"testing"

	"github.com/BrianOtieno/quantum-computing/common"
	"github.com/BrianOtieno/quantum-computing/core"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
)

func TestDeviceSetting(t *testing.T) {
	blob, assetErr := common.GetAsset("unit_test_device_setting.toml")
	assert.Nil(t, assetErr)

	ds := DeviceSetting{}
	_, err := toml.Decode(blob, &ds)
	assert.Nil(t, err)
	assert.Equal(t, ds.DeviceName, "bench_sim")
	assert.Equal(t, ds.MaxQubits, 4)
	assert.Equal(t, ds.MaxShots, 20000)
	assert.Equal(t, ds.NoisePreset, "realistic")

	assert.True(t, ds.QASMSupport.AllowList.Enabled)
	assert.False(t, ds.QASMSupport.DenyList.Enabled)

	allowStatements := ds.QASMSupport.AllowList.Statements
	assert.Contains(t, allowStatements, &QASMStatementType{Name: "branch"})
	assert.Contains(t, allowStatements, &QASMStatementType{Name: "gatecall"})

	denyStatements := ds.QASMSupport.DenyList.Statements
	assert.Contains(t, denyStatements, &QASMStatementType{Name: "reset"})
	denyGates := ds.QASMSupport.DenyList.Gates
	assert.Contains(t, denyGates, &QASMGateType{Name: "ccx"})
}

func TestLoadDeviceSettingDefaults(t *testing.T) {
	ds, err := LoadDeviceSetting("no_such_device_setting.toml")
	assert.Nil(t, err)
	assert.Equal(t, ds.DeviceName, "local_sim")
	assert.Equal(t, ds.DeviceType, "simulator")
	assert.Equal(t, ds.MaxQubits, 10)
	assert.Equal(t, ds.MaxShots, 10000)
	assert.Equal(t, ds.NoisePreset, "ideal")
	assert.False(t, ds.QASMSupport.AllowList.Enabled)
	assert.False(t, ds.QASMSupport.DenyList.Enabled)
}

func TestReadoutForPreset(t *testing.T) {
	re, err := readoutForPreset("ideal", 3)
	assert.Nil(t, err)
	assert.Nil(t, re)

	re, err = readoutForPreset("realistic", 3)
	assert.Nil(t, err)
	assert.Equal(t, len(re.P10), 3)
	assert.Equal(t, len(re.P01), 3)
	assert.Equal(t, re.P10[0], 0.02)
	assert.Equal(t, re.P01[2], 0.04)

	_, err = readoutForPreset("loud", 3)
	assert.NotNil(t, err)
	assert.Equal(t, err.Error(), "unknown noise preset:loud")
}

func TestBuildDeviceInfo(t *testing.T) {
	ds := NewDeviceSetting()
	ds.NoisePreset = "heavy"
	di, err := buildDeviceInfo(ds)
	assert.Nil(t, err)
	assert.Equal(t, di.DeviceName, "local_sim")
	assert.Equal(t, di.Status, core.Available)
	assert.Equal(t, di.MaxQubits, 10)
	assert.Equal(t, di.BasisGates, []string{"sx", "rz", "cx"})

	spec := core.DeviceInfoSpec{}
	err = json.Unmarshal([]byte(di.DeviceInfoSpecJson), &spec)
	assert.Nil(t, err)
	assert.Equal(t, len(spec.Qubits), 10)
	assert.Equal(t, len(spec.Couplings), 9)
	assert.Equal(t, spec.Qubits[0].MeasError.ProbMeas1Prep0, 0.05)
	assert.Equal(t, spec.Qubits[3].MeasError.ProbMeas0Prep1, 0.08)
	assert.True(t, spec.Qubits[0].Fidelity > spec.Qubits[9].Fidelity)
	assert.Equal(t, spec.Couplings[0].Control, 0)
	assert.Equal(t, spec.Couplings[0].Target, 1)
}
