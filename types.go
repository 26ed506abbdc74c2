// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package modbus implements a Modbus TCP slave simulator: a protocol
// engine, an in-memory register store, and background mutators that
// drive holding/input registers to simulate dynamic process values.
package modbus

import "time"

// UnitID represents the Modbus unit identifier (slave address).
type UnitID uint8

// FunctionCode represents a Modbus function code.
type FunctionCode uint8

// Function codes supported by the protocol engine.
const (
	FuncReadCoils              FunctionCode = 0x01
	FuncReadDiscreteInputs     FunctionCode = 0x02
	FuncReadHoldingRegisters   FunctionCode = 0x03
	FuncReadInputRegisters     FunctionCode = 0x04
	FuncWriteSingleCoil        FunctionCode = 0x05
	FuncWriteSingleRegister    FunctionCode = 0x06
	FuncReadExceptionStatus    FunctionCode = 0x07
	FuncDiagnostics            FunctionCode = 0x08
	FuncWriteMultipleCoils     FunctionCode = 0x0F
	FuncWriteMultipleRegisters FunctionCode = 0x10
)

// Diagnostic sub-function codes (FC08). Only ReturnQueryData is answered;
// everything else is an illegal function.
const (
	DiagReturnQueryData uint16 = 0x00
)

// Protocol constants.
const (
	// MaxQuantityCoils is the maximum coil quantity for a single request.
	MaxQuantityCoils = 2000

	// MaxQuantityDiscreteInputs is the maximum discrete input quantity.
	MaxQuantityDiscreteInputs = 2000

	// MaxQuantityReadRegisters is the maximum register quantity for reads.
	MaxQuantityReadRegisters = 125

	// MaxQuantityWriteRegisters is the maximum register quantity for writes.
	MaxQuantityWriteRegisters = 123

	// MaxQuantityWriteCoils is the maximum coil quantity for multi-write.
	MaxQuantityWriteCoils = 1968

	// MBAPHeaderSize is the size of the MBAP header in bytes.
	MBAPHeaderSize = 7

	// ProtocolID is the Modbus protocol identifier (always 0 for Modbus TCP).
	ProtocolID = 0

	// DefaultPort is the default Modbus TCP port.
	DefaultPort = 502

	// MaxBankSize is the size of the full 16-bit Modbus address space.
	// Bank sizes are uint16, so a bank holds at most MaxBankSize-1 cells.
	MaxBankSize = 65536

	// MaxRecvBuffer is the per-connection receive buffer size (§5).
	MaxRecvBuffer = 512
)

// Coil values for write operations.
const (
	CoilOn  uint16 = 0xFF00
	CoilOff uint16 = 0x0000
)

// Bank identifies which register bank an auto-increment worker targets.
type Bank int

const (
	BankHolding Bank = iota
	BankInput
)

// String returns the bank's name.
func (b Bank) String() string {
	switch b {
	case BankHolding:
		return "holding"
	case BankInput:
		return "input"
	default:
		return "unknown"
	}
}

// String returns the string representation of FunctionCode.
func (fc FunctionCode) String() string {
	switch fc {
	case FuncReadCoils:
		return "ReadCoils"
	case FuncReadDiscreteInputs:
		return "ReadDiscreteInputs"
	case FuncReadHoldingRegisters:
		return "ReadHoldingRegisters"
	case FuncReadInputRegisters:
		return "ReadInputRegisters"
	case FuncWriteSingleCoil:
		return "WriteSingleCoil"
	case FuncWriteSingleRegister:
		return "WriteSingleRegister"
	case FuncReadExceptionStatus:
		return "ReadExceptionStatus"
	case FuncDiagnostics:
		return "Diagnostics"
	case FuncWriteMultipleCoils:
		return "WriteMultipleCoils"
	case FuncWriteMultipleRegisters:
		return "WriteMultipleRegisters"
	default:
		return "Unknown"
	}
}

// AutoIncrementConfig configures one bank's background mutator (spec §3).
type AutoIncrementConfig struct {
	Enabled   bool
	Addresses []uint16
	Interval  time.Duration
	Increment uint16
	Max       uint16
}
