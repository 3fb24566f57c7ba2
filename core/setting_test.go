//go:build unit
// +build unit

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type TestSettingDevices struct {
	DeviceNames []string `toml:"device_names"`
}

type TestSettingNoises struct {
	NoiseNames []string `toml:"noise_names"`
}

func TestRegisterSettings(t *testing.T) {
	s := registeredSettings()
	assert.Equal(t, 2, len(s.ComponentSetting))
}

func TestParseSettings(t *testing.T) {
	ResetSetting()
	tests := []struct {
		name      string
		in        string
		wantError error
		want      *Setting
	}{
		{
			name:      "empty",
			in:        "",
			wantError: nil,
			want: &Setting{
				ComponentSetting: map[string]interface{}{},
				RunGroupSetting:  map[string]interface{}{},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotError := globalSetting.parseSetting(tt.in)
			assert.Equal(t, tt.wantError, gotError)
			assert.Equal(t, tt.want, globalSetting)
		})
	}
}

func registeredSettings() *Setting {
	ns := newSetting()
	ns.registerSetting("devices", &TestSettingDevices{
		DeviceNames: []string{},
	})
	ns.registerSetting("noises", &TestSettingNoises{
		NoiseNames: []string{},
	})
	return ns
}
