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

package config

import (
	"reflect"
	"testing"
)

func TestParseAddressList_Empty(t *testing.T) {
	got, err := ParseAddressList("")
	if err != nil {
		t.Fatalf("ParseAddressList(\"\"): %v", err)
	}
	if got != nil {
		t.Errorf("ParseAddressList(\"\") = %v, want nil", got)
	}
}

func TestParseAddressList_SingleValues(t *testing.T) {
	got, err := ParseAddressList("0,2,5")
	if err != nil {
		t.Fatalf("ParseAddressList: %v", err)
	}
	want := []uint16{0, 2, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseAddressList(\"0,2,5\") = %v, want %v", got, want)
	}
}

func TestParseAddressList_Range(t *testing.T) {
	got, err := ParseAddressList("5-8")
	if err != nil {
		t.Fatalf("ParseAddressList: %v", err)
	}
	want := []uint16{5, 6, 7, 8}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseAddressList(\"5-8\") = %v, want %v", got, want)
	}
}

func TestParseAddressList_MixedAndDuplicates(t *testing.T) {
	got, err := ParseAddressList("0,2,5-8,2")
	if err != nil {
		t.Fatalf("ParseAddressList: %v", err)
	}
	want := []uint16{0, 2, 5, 6, 7, 8, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseAddressList(\"0,2,5-8,2\") = %v, want %v", got, want)
	}
}

func TestParseAddressList_InvertedRangeRejected(t *testing.T) {
	if _, err := ParseAddressList("8-5"); err == nil {
		t.Error("ParseAddressList(\"8-5\") = nil error, want error")
	}
}

func TestParseAddressList_EmptyItemRejected(t *testing.T) {
	if _, err := ParseAddressList("0,,5"); err == nil {
		t.Error("ParseAddressList(\"0,,5\") = nil error, want error")
	}
}

func TestParseAddressList_NonNumericRejected(t *testing.T) {
	if _, err := ParseAddressList("abc"); err == nil {
		t.Error("ParseAddressList(\"abc\") = nil error, want error")
	}
}
