//go:build unit
// +build unit

package multiprog

import (
	"testing"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/stretchr/testify/assert"
)

func Test_divideStringByLengths(t *testing.T) {
	type args struct {
		input   string
		lengths []int32
	}
	tests := []struct {
		name      string
		args      args
		want      []string
		assertion assert.ErrorAssertionFunc
	}{
		{
			name: "Positive test - no qubit and no circuit",
			args: args{
				input:   "",
				lengths: []int32{},
			},
			want: []string{},
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.NoError(t, err)
			},
		},
		{
			name: "Positive test - no qubit and circuits with 0 qubit",
			args: args{
				input:   "",
				lengths: []int32{0, 0},
			},
			want: []string{"", ""},
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.NoError(t, err)
			},
		},
		{
			name: "Positive test - 1 circuit",
			args: args{
				input:   "01",
				lengths: []int32{2},
			},
			want: []string{"01"},
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.NoError(t, err)
			},
		},
		{
			name: "Positive test - 3 circuits",
			args: args{
				input:   "011000101",
				lengths: []int32{2, 3, 4},
			},
			want: []string{"01", "100", "0101"},
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.NoError(t, err)
			},
		},
		{
			name: "Positive test - 3 normal circuits and 2 circuits with no qubit",
			args: args{
				input:   "011000101",
				lengths: []int32{2, 3, 0, 4, 0},
			},
			want: []string{"01", "100", "", "0101", ""},
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.NoError(t, err)
			},
		},
		{
			name: "Negative test - exceeded qubits' length",
			args: args{
				input:   "0110001011",
				lengths: []int32{2, 3, 4},
			},
			want: nil,
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.Error(t, err)
			},
		},
		{
			name: "Negative test - short qubits' length",
			args: args{
				input:   "01100010",
				lengths: []int32{2, 3, 4},
			},
			want: nil,
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.Error(t, err)
			},
		},
		{
			name: "Negative test - exceed combinedQubitsList member",
			args: args{
				input:   "011000101",
				lengths: []int32{2, 3, 4, 1},
			},
			want: nil,
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.Error(t, err)
			},
		},
		{
			name: "Negative test - short combinedQubitsList member",
			args: args{
				input:   "011000101",
				lengths: []int32{2, 3},
			},
			want: nil,
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.Error(t, err)
			},
		},
		{
			name: "Negative test - zero combinedQubitsList member",
			args: args{
				input:   "011000101",
				lengths: []int32{},
			},
			want: nil,
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.Error(t, err)
			},
		},
		{
			name: "Negative test - zero qubit with finite circuits",
			args: args{
				input:   "",
				lengths: []int32{1, 2},
			},
			want: nil,
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.Error(t, err)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := divideStringByLengths(tt.args.input, tt.args.lengths)
			tt.assertion(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDivideResult(t *testing.T) {
	type args struct {
		jd                 *core.JobData
		combinedQubitsList []int32
	}
	tests := []struct {
		name              string
		args              args
		wantCounts        core.Counts
		wantDividedCounts core.DividedResult
		assertion         assert.ErrorAssertionFunc
	}{
		{
			name: "Positive test - 1 circuit",
			args: args{
				jd: &core.JobData{Result: &core.Result{
					Counts: core.Counts{"0001": 1, "0100": 2, "1000": 4, "1111": 8, "0010": 16, "0110": 32, "1011": 64},
				}},
				combinedQubitsList: []int32{4},
			},
			wantCounts: core.Counts{
				"0001": 1,
				"0100": 2,
				"1000": 4,
				"1111": 8,
				"0010": 16,
				"0110": 32,
				"1011": 64,
			},
			wantDividedCounts: core.DividedResult{
				0: {
					"0001": 1,
					"0100": 2,
					"1000": 4,
					"0010": 16,
					"0110": 32,
					"1011": 64,
					"1111": 8,
				},
			},
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.NoError(t, err)
			},
		},
		{
			name: "Positive test - 2 circuits",
			args: args{
				jd: &core.JobData{Result: &core.Result{
					Counts: core.Counts{"0001": 1, "0100": 2, "1000": 4, "1111": 8, "0010": 16, "0110": 32, "1011": 64},
				}},
				combinedQubitsList: []int32{3, 1},
			},
			wantCounts: core.Counts{
				"0001": 1,
				"0100": 2,
				"1000": 4,
				"1111": 8,
				"0010": 16,
				"0110": 32,
				"1011": 64,
			},
			wantDividedCounts: core.DividedResult{
				0: {
					"0": 54,
					"1": 73,
				},
				1: {
					"000": 1,
					"010": 2,
					"100": 4,
					"001": 16,
					"011": 32,
					"101": 64,
					"111": 8,
				},
			},
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.NoError(t, err)
			},
		},
		{
			name: "Negative test - exceeded member of combinedQubitsList",
			args: args{
				jd: &core.JobData{Result: &core.Result{
					Counts: core.Counts{"0001": 1, "0100": 2, "1000": 4, "1111": 8, "0010": 16, "0110": 32, "1011": 64},
				}},
				combinedQubitsList: []int32{3, 1, 1},
			},
			wantCounts: core.Counts{
				"0001": 1,
				"0100": 2,
				"1000": 4,
				"1111": 8,
				"0010": 16,
				"0110": 32,
				"1011": 64,
			},
			wantDividedCounts: nil,
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.EqualError(t, err, "inconsistent qubits")
			},
		},
		{
			name: "Negative test - no qubit",
			args: args{
				jd: &core.JobData{Result: &core.Result{
					Counts: core.Counts{},
				}},
				combinedQubitsList: []int32{},
			},
			wantCounts:        core.Counts{},
			wantDividedCounts: nil,
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.EqualError(t, err, "inconsistent qubit property")
			},
		},
		{
			name: "Negative test - exceeded qubits of combinedQubitsList",
			args: args{
				jd: &core.JobData{Result: &core.Result{
					Counts: core.Counts{"0001": 1, "0100": 2, "1000": 4, "1111": 8, "0010": 16, "0110": 32, "1011": 64},
				}},
				combinedQubitsList: []int32{3, 2},
			},
			wantCounts: core.Counts{
				"0001": 1,
				"0100": 2,
				"1000": 4,
				"1111": 8,
				"0010": 16,
				"0110": 32,
				"1011": 64,
			},
			wantDividedCounts: nil,
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.EqualError(t, err, "inconsistent qubits")
			},
		},
		{
			name: "Negative test - no combinedQubitsList",
			args: args{
				jd: &core.JobData{Result: &core.Result{
					Counts: core.Counts{"0001": 1, "0100": 2, "1000": 4, "1111": 8, "0010": 16, "0110": 32, "1011": 64},
				}},
				combinedQubitsList: []int32{},
			},
			wantCounts: core.Counts{
				"0001": 1,
				"0100": 2,
				"1000": 4,
				"1111": 8,
				"0010": 16,
				"0110": 32,
				"1011": 64,
			},
			wantDividedCounts: nil,
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.EqualError(t, err, "inconsistent qubits")
			},
		},
		{
			name: "Negative test - no combinedQubitsList (zero qubit of circuits)",
			args: args{
				jd: &core.JobData{Result: &core.Result{
					Counts: core.Counts{"0001": 1, "0100": 2, "1000": 4, "1111": 8, "0010": 16, "0110": 32, "1011": 64},
				}},
				combinedQubitsList: []int32{0, 0, 0},
			},
			wantCounts: core.Counts{
				"0001": 1,
				"0100": 2,
				"1000": 4,
				"1111": 8,
				"0010": 16,
				"0110": 32,
				"1011": 64,
			},
			wantDividedCounts: nil,
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.EqualError(t, err, "inconsistent qubits")
			},
		},
		{
			name: "Negative test - combinedQubitsList and no qubits counts",
			args: args{
				jd: &core.JobData{Result: &core.Result{
					Counts: core.Counts{},
				}},
				combinedQubitsList: []int32{1, 2, 3},
			},
			wantCounts:        core.Counts{},
			wantDividedCounts: nil,
			assertion: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.EqualError(t, err, "inconsistent qubit property")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.assertion(t, DivideResult(tt.args.jd, tt.args.combinedQubitsList))
			assert.Equal(t, tt.wantCounts, tt.args.jd.Result.Counts)
			assert.Equal(t, tt.wantDividedCounts, tt.args.jd.Result.DividedResult)
		})
	}
}
