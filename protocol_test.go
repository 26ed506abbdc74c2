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
	"bytes"
	"testing"
)

func TestMBAPHeader_EncodeDecode(t *testing.T) {
	header := MBAPHeader{
		TransactionID: 0x0001,
		ProtocolID:    0x0000,
		Length:        0x0006,
		UnitID:        0x01,
	}

	want := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x06, 0x01}
	if got := header.Encode(); !bytes.Equal(got, want) {
		t.Errorf("Encode() = %x, want %x", got, want)
	}

	var decoded MBAPHeader
	if err := decoded.Decode(want); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != header {
		t.Errorf("Decode() = %+v, want %+v", decoded, header)
	}
}

func TestMBAPHeader_Decode_TooShort(t *testing.T) {
	var h MBAPHeader
	if err := h.Decode([]byte{0x00, 0x01}); err == nil {
		t.Error("Decode with 2 bytes = nil error, want error")
	}
}

func TestFrame_EncodeDecode(t *testing.T) {
	f := Frame{
		Header: MBAPHeader{TransactionID: 7, ProtocolID: 0, UnitID: 1},
		PDU:    []byte{0x03, 0x00, 0x00, 0x00, 0x01},
	}
	encoded := f.Encode()

	want := []byte{0x00, 0x07, 0x00, 0x00, 0x00, 0x06, 0x01, 0x03, 0x00, 0x00, 0x00, 0x01}
	if !bytes.Equal(encoded, want) {
		t.Errorf("Encode() = %x, want %x", encoded, want)
	}

	var decoded Frame
	if err := decoded.Decode(encoded); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Header.TransactionID != 7 || !bytes.Equal(decoded.PDU, f.PDU) {
		t.Errorf("Decode() = %+v, want TransactionID=7 PDU=%x", decoded, f.PDU)
	}
}

func TestFrame_Decode_IncompleteFrame(t *testing.T) {
	var f Frame
	// Length field claims 6 bytes follow, but only 2 are present.
	data := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x06, 0x01, 0x03}
	if err := f.Decode(data); err == nil {
		t.Error("Decode with truncated PDU = nil error, want error")
	}
}

func TestIsExceptionResponse(t *testing.T) {
	if IsExceptionResponse([]byte{byte(FuncReadHoldingRegisters)}) {
		t.Error("normal response classified as exception")
	}
	if !IsExceptionResponse([]byte{byte(FuncReadHoldingRegisters) | 0x80, byte(ExceptionIllegalDataAddress)}) {
		t.Error("exception response not classified as exception")
	}
}

func TestParseExceptionResponse(t *testing.T) {
	pdu := []byte{byte(FuncReadHoldingRegisters) | 0x80, byte(ExceptionIllegalDataAddress)}
	pe := ParseExceptionResponse(pdu)
	if pe == nil {
		t.Fatal("ParseExceptionResponse returned nil")
	}
	if pe.FunctionCode != FuncReadHoldingRegisters {
		t.Errorf("FunctionCode = %v, want %v", pe.FunctionCode, FuncReadHoldingRegisters)
	}
	if !IsIllegalDataAddress(pe) {
		t.Error("IsIllegalDataAddress(pe) = false, want true")
	}
	if IsIllegalFunction(pe) {
		t.Error("IsIllegalFunction(pe) = true, want false")
	}
}

func TestParseExceptionResponse_TooShort(t *testing.T) {
	if pe := ParseExceptionResponse([]byte{0x83}); pe != nil {
		t.Errorf("ParseExceptionResponse(1 byte) = %v, want nil", pe)
	}
}
