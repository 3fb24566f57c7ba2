package qpu

import (
	"fmt"

	"github.com/BrianOtieno/quantum-computing/core"
	"github.com/BrianOtieno/quantum-computing/qasm"
	"go.uber.org/zap"
)

func circuitValidate(qasmText string, ds *DeviceSetting) error {
	if qasmText == "" {
		msg := "no input qasm"
		zap.L().Info(msg)
		return fmt.Errorf(msg)
	}
	circ, err := qasm.ParseQASM(qasmText)
	if err != nil {
		zap.L().Info(err.Error())
		return err
	}
	if err := validateStatements(circ, ds.QASMSupport); err != nil {
		zap.L().Info(err.Error())
		return err
	}
	if err := checkGateCalls(circ); err != nil {
		zap.L().Info(err.Error())
		return err
	}
	di := core.GetSystemComponents().GetDeviceInfo()
	if di.Status != core.Available {
		msg := fmt.Sprintf("device is not available. status:%s", di.Status)
		zap.L().Info(msg)
		return fmt.Errorf(msg)
	} else {
		if err := checkResource(circ, di.MaxQubits); err != nil {
			zap.L().Info(err.Error())
			return err
		}
	}
	return nil
}

func validateStatements(circ *qasm.ProgramIR, qasmSupport *QASMSupport) error {
	if qasmSupport.AllowList.Enabled {
		if err := filterList(circ, qasmSupport.AllowList, false); err != nil {
			zap.L().Info(fmt.Sprintf("[AllowList Error] %s", err.Error()))
			return err
		}
	}
	if qasmSupport.DenyList.Enabled {
		if err := filterList(circ, qasmSupport.DenyList, true); err != nil {
			zap.L().Info(fmt.Sprintf("[DenyList Error] %s", err.Error()))
			return err
		}
	}
	return nil
}

func filterList(circ *qasm.ProgramIR, filter *QASMFilter, returnIfFiltered bool) error {
	statementList := []string{}
	for _, qt := range filter.Statements {
		statementList = append(statementList, qt.Name)
	}
	gateList := []string{}
	for _, gt := range filter.Gates {
		gateList = append(gateList, gt.Name)
	}
	for _, statement := range circ.Statements {
		n := qasm.StatementKind(statement)
		if returnIfFiltered {
			// DenyList
			if containsName(n, statementList) {
				return fmt.Errorf("statement:%s is not supported", n)
			}
		} else {
			// AllowList
			if !containsName(n, statementList) {
				return fmt.Errorf("statement:%s is not supported", n)
			}
		}
	}
	if len(gateList) == 0 {
		return nil
	}
	for _, g := range circ.GateNames() {
		if returnIfFiltered {
			if containsName(g, gateList) {
				return fmt.Errorf("gate:%s is not supported", g)
			}
		} else {
			if !containsName(g, gateList) {
				return fmt.Errorf("gate:%s is not supported", g)
			}
		}
	}
	return nil
}

func containsName(name string, list []string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

func checkGateCalls(circ *qasm.ProgramIR) error {
	for _, statement := range circ.Statements {
		var call *qasm.GateCallStatementIR
		switch st := statement.(type) {
		case *qasm.GateCallStatementIR:
			call = st
		case *qasm.BranchStatementIR:
			call = st.Call
		default:
			continue
		}
		if err := circ.CheckGateCall(call); err != nil {
			return err
		}
	}
	return nil
}

func checkResource(circ *qasm.ProgramIR, qubinNumber int) error {
	if circ.QubitCount > qubinNumber {
		return fmt.Errorf("Too many quibits in your circuit. We only have %d qubits.", qubinNumber)
	}
	return nil
}
