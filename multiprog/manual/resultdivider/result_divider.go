package multiprog

import (
	"errors"

	"github.com/BrianOtieno/quantum-computing/core"
	"go.uber.org/zap"
)

func divideStringByLengths(input string, lengths []int32) ([]string, error) {
	// Split the input string into multiple strings
	// ex) input: "101011011", lengths: [2, 3, 4] -> ["10", "101", "1011"]
	var result []string = []string{}
	currentPos := int32(0)
	for _, length := range lengths {
		if currentPos+length > int32(len(input)) {
			return nil, errors.New("inconsistent qubits")
		}
		// append the substring to the result
		result = append(result, input[currentPos:currentPos+length])
		currentPos += length
	}

	if currentPos != int32(len(input)) {
		return nil, errors.New("inconsistent qubits")
	}

	return result, nil
}

// DivideResult cuts every counts key back into per-program chunks.
// Keys read left to right from the highest qubit, so chunk 0 belongs to
// the last combined program and combinedQubitsList is ordered to match.
func DivideResult(jd *core.JobData, combinedQubitsList []int32) (err error) {
	err = nil
	var divided_keys []string
	// In case of no counts with finite combined_qubits_list, return an error
	if len(jd.Result.Counts) == 0 {
		err = errors.New("inconsistent qubit property")
		return
	}

	// Note that key of jd.Result.Counts is a form of binary string like "1010" of "q_4q_3q_2q_1"
	divided_job_result := map[uint32]map[string]uint32{}
	for k, v := range jd.Result.Counts {
		divided_keys, err = divideStringByLengths(k, combinedQubitsList)
		zap.L().Debug("divided_keys", zap.Any("divided_keys", divided_keys))
		if err != nil {
			return
		}
		for i, divided_one_key := range divided_keys {
			// convert to circuit number
			ith_circuit := uint32(len(combinedQubitsList)-i) - 1 // the index is from length-1 to 0
			// if the key is not in the map, create a new map
			if _, exists := divided_job_result[ith_circuit]; !exists {
				divided_job_result[ith_circuit] = map[string]uint32{}
			}
			// add the value to the existing value or create a new key
			divided_job_result[ith_circuit][divided_one_key] += v
		}
	}
	jd.Result.DividedResult = divided_job_result
	return
}
