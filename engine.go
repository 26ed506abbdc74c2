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
	"encoding/binary"
	"errors"
)

// Engine is the stateless protocol dispatcher: it accepts one fully
// reassembled Modbus TCP frame at a time and turns it into a response
// frame, or nil when the frame must be dropped silently.
type Engine struct {
	store *RegisterStore
}

// NewEngine returns an Engine backed by store.
func NewEngine(store *RegisterStore) *Engine {
	return &Engine{store: store}
}

// Handle accepts one complete frame (MBAP header followed by its PDU,
// exactly as declared by the header's length field) and returns the
// response frame to write back, or nil if the frame is silently
// dropped: too short to contain a header and a function code, a
// non-zero protocol ID, or a unit ID that neither matches configuredUnit
// nor is the broadcast address 0.
func (e *Engine) Handle(buf []byte, configuredUnit UnitID) []byte {
	if len(buf) < MBAPHeaderSize+1 {
		return nil
	}

	var hdr MBAPHeader
	if err := hdr.Decode(buf[:MBAPHeaderSize]); err != nil {
		return nil
	}
	if hdr.ProtocolID != ProtocolID {
		return nil
	}
	if hdr.UnitID != 0 && hdr.UnitID != configuredUnit {
		return nil
	}

	pdu := buf[MBAPHeaderSize:]
	if len(pdu) < 1 {
		return nil
	}

	respPDU := e.dispatch(pdu)

	f := Frame{
		Header: MBAPHeader{
			TransactionID: hdr.TransactionID,
			ProtocolID:    ProtocolID,
			UnitID:        hdr.UnitID,
		},
		PDU: respPDU,
	}
	return f.Encode()
}

func (e *Engine) dispatch(pdu []byte) []byte {
	fc := FunctionCode(pdu[0])
	switch fc {
	case FuncReadCoils:
		return e.readBits(fc, pdu, e.store.ReadCoils, MaxQuantityCoils)
	case FuncReadDiscreteInputs:
		return e.readBits(fc, pdu, e.store.ReadDiscrete, MaxQuantityDiscreteInputs)
	case FuncReadHoldingRegisters:
		return e.readWords(fc, pdu, e.store.ReadHolding)
	case FuncReadInputRegisters:
		return e.readWords(fc, pdu, e.store.ReadInput)
	case FuncWriteSingleCoil:
		return e.writeSingleCoil(pdu)
	case FuncWriteSingleRegister:
		return e.writeSingleRegister(pdu)
	case FuncReadExceptionStatus:
		return []byte{byte(fc), 0x00}
	case FuncDiagnostics:
		return e.diagnostics(pdu)
	case FuncWriteMultipleCoils:
		return e.writeMultipleCoils(pdu)
	case FuncWriteMultipleRegisters:
		return e.writeMultipleRegisters(pdu)
	default:
		return exceptionPDU(fc, ExceptionIllegalFunction)
	}
}

func exceptionPDU(fc FunctionCode, ec ExceptionCode) []byte {
	return []byte{byte(fc) | 0x80, byte(ec)}
}

func storeErrToException(fc FunctionCode, err error) []byte {
	if errors.Is(err, ErrOutOfRange) {
		return exceptionPDU(fc, ExceptionIllegalDataAddress)
	}
	return exceptionPDU(fc, ExceptionServerDeviceFailure)
}

func (e *Engine) readBits(fc FunctionCode, pdu []byte, read func(start, count uint16) ([]byte, error), maxQty uint16) []byte {
	if len(pdu) != 5 {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	start := binary.BigEndian.Uint16(pdu[1:3])
	count := binary.BigEndian.Uint16(pdu[3:5])
	if count < 1 || count > maxQty {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	bits, err := read(start, count)
	if err != nil {
		return storeErrToException(fc, err)
	}
	resp := make([]byte, 2+len(bits))
	resp[0] = byte(fc)
	resp[1] = byte(len(bits))
	copy(resp[2:], bits)
	return resp
}

func (e *Engine) readWords(fc FunctionCode, pdu []byte, read func(start, count uint16) ([]byte, error)) []byte {
	if len(pdu) != 5 {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	start := binary.BigEndian.Uint16(pdu[1:3])
	count := binary.BigEndian.Uint16(pdu[3:5])
	if count < 1 || count > MaxQuantityReadRegisters {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	words, err := read(start, count)
	if err != nil {
		return storeErrToException(fc, err)
	}
	resp := make([]byte, 2+len(words))
	resp[0] = byte(fc)
	resp[1] = byte(len(words))
	copy(resp[2:], words)
	return resp
}

func (e *Engine) writeSingleCoil(pdu []byte) []byte {
	fc := FuncWriteSingleCoil
	if len(pdu) != 5 {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	addr := binary.BigEndian.Uint16(pdu[1:3])
	value := binary.BigEndian.Uint16(pdu[3:5])
	if value != CoilOn && value != CoilOff {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	if err := e.store.WriteCoil(addr, value == CoilOn); err != nil {
		return storeErrToException(fc, err)
	}
	resp := make([]byte, 5)
	copy(resp, pdu)
	return resp
}

func (e *Engine) writeSingleRegister(pdu []byte) []byte {
	fc := FuncWriteSingleRegister
	if len(pdu) != 5 {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	addr := binary.BigEndian.Uint16(pdu[1:3])
	value := binary.BigEndian.Uint16(pdu[3:5])
	if err := e.store.WriteRegister(addr, value); err != nil {
		return storeErrToException(fc, err)
	}
	resp := make([]byte, 5)
	copy(resp, pdu)
	return resp
}

func (e *Engine) writeMultipleCoils(pdu []byte) []byte {
	fc := FuncWriteMultipleCoils
	if len(pdu) < 6 {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	start := binary.BigEndian.Uint16(pdu[1:3])
	count := binary.BigEndian.Uint16(pdu[3:5])
	byteCount := int(pdu[5])
	if count < 1 || count > MaxQuantityWriteCoils || byteCount != bitBytes(count) || len(pdu) != 6+byteCount {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	if err := e.store.WriteCoils(start, count, pdu[6:6+byteCount]); err != nil {
		return storeErrToException(fc, err)
	}
	resp := make([]byte, 5)
	resp[0] = byte(fc)
	copy(resp[1:], pdu[1:5])
	return resp
}

func (e *Engine) writeMultipleRegisters(pdu []byte) []byte {
	fc := FuncWriteMultipleRegisters
	if len(pdu) < 6 {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	start := binary.BigEndian.Uint16(pdu[1:3])
	count := binary.BigEndian.Uint16(pdu[3:5])
	byteCount := int(pdu[5])
	if count < 1 || count > MaxQuantityWriteRegisters || byteCount != int(count)*2 || len(pdu) != 6+byteCount {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	if err := e.store.WriteRegisters(start, count, pdu[6:6+byteCount]); err != nil {
		return storeErrToException(fc, err)
	}
	resp := make([]byte, 5)
	resp[0] = byte(fc)
	copy(resp[1:], pdu[1:5])
	return resp
}

func (e *Engine) diagnostics(pdu []byte) []byte {
	fc := FuncDiagnostics
	if len(pdu) < 3 {
		return exceptionPDU(fc, ExceptionIllegalDataValue)
	}
	sub := binary.BigEndian.Uint16(pdu[1:3])
	if sub != DiagReturnQueryData {
		return exceptionPDU(fc, ExceptionIllegalFunction)
	}
	resp := make([]byte, len(pdu))
	copy(resp, pdu)
	return resp
}
