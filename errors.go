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

package modbus

import (
	"errors"
	"fmt"
)

// ExceptionCode represents a Modbus exception code.
type ExceptionCode uint8

// Modbus exception codes the engine can emit.
const (
	ExceptionIllegalFunction     ExceptionCode = 0x01
	ExceptionIllegalDataAddress  ExceptionCode = 0x02
	ExceptionIllegalDataValue    ExceptionCode = 0x03
	ExceptionServerDeviceFailure ExceptionCode = 0x04
)

// String returns the string representation of the exception code.
func (e ExceptionCode) String() string {
	switch e {
	case ExceptionIllegalFunction:
		return "illegal function"
	case ExceptionIllegalDataAddress:
		return "illegal data address"
	case ExceptionIllegalDataValue:
		return "illegal data value"
	case ExceptionServerDeviceFailure:
		return "server device failure"
	default:
		return fmt.Sprintf("unknown exception (0x%02X)", uint8(e))
	}
}

// ProtocolError represents a Modbus exception response originating from
// the register store or the engine's own payload validation.
type ProtocolError struct {
	FunctionCode  FunctionCode
	ExceptionCode ExceptionCode
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("modbus: exception %s (FC=%02X)", e.ExceptionCode, uint8(e.FunctionCode))
}

// Is checks if the error matches the target by exception code.
func (e *ProtocolError) Is(target error) bool {
	t, ok := target.(*ProtocolError)
	if !ok {
		return false
	}
	return e.ExceptionCode == t.ExceptionCode
}

// Sentinel errors that never reach the wire.
var (
	// ErrInvalidFrame indicates a malformed MBAP/PDU frame.
	ErrInvalidFrame = errors.New("modbus: invalid frame")

	// ErrOutOfRange indicates a store operation's address range exceeded
	// the bank's configured size (spec §4.2 invariant 2).
	ErrOutOfRange = errors.New("modbus: address range out of bounds")

	// ErrIncrementExceedsMax indicates a configured auto-increment step
	// larger than its wrap threshold (spec §9 Open Question: rejected at
	// configuration time rather than silently wrapped).
	ErrIncrementExceedsMax = errors.New("modbus: increment exceeds max")

	// ErrIntervalNotPositive indicates a zero or negative auto-increment
	// interval on an enabled worker (spec §3: "interval: positive duration").
	ErrIntervalNotPositive = errors.New("modbus: auto-increment interval must be positive")
)

// NewProtocolError creates a new Modbus exception error.
func NewProtocolError(fc FunctionCode, ec ExceptionCode) *ProtocolError {
	return &ProtocolError{
		FunctionCode:  fc,
		ExceptionCode: ec,
	}
}

// IsException checks if an error is a specific Modbus exception.
func IsException(err error, code ExceptionCode) bool {
	var protoErr *ProtocolError
	if errors.As(err, &protoErr) {
		return protoErr.ExceptionCode == code
	}
	return false
}

// IsIllegalFunction checks if the error is an illegal function exception.
func IsIllegalFunction(err error) bool {
	return IsException(err, ExceptionIllegalFunction)
}

// IsIllegalDataAddress checks if the error is an illegal data address exception.
func IsIllegalDataAddress(err error) bool {
	return IsException(err, ExceptionIllegalDataAddress)
}

// IsIllegalDataValue checks if the error is an illegal data value exception.
func IsIllegalDataValue(err error) bool {
	return IsException(err, ExceptionIllegalDataValue)
}

// IsServerDeviceFailure checks if the error is a server device failure exception.
func IsServerDeviceFailure(err error) bool {
	return IsException(err, ExceptionServerDeviceFailure)
}
