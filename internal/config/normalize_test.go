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
	"testing"
	"time"
)

func TestNormalize_ClearsDisabledAddresses(t *testing.T) {
	cfg := Default()
	cfg.HoldingAuto.Addresses = []uint16{1, 2, 3}
	cfg.InputAuto.Enabled = true
	cfg.InputAuto.Addresses = []uint16{4, 5}

	Normalize(cfg)

	if cfg.HoldingAuto.Addresses != nil {
		t.Errorf("disabled HoldingAuto.Addresses = %v, want nil", cfg.HoldingAuto.Addresses)
	}
	if len(cfg.InputAuto.Addresses) != 2 {
		t.Errorf("enabled InputAuto.Addresses = %v, want unchanged", cfg.InputAuto.Addresses)
	}
}

func TestNormalize_NilConfigNoop(t *testing.T) {
	Normalize(nil)
}

func TestAutoIncrement_ToDuration(t *testing.T) {
	a := AutoIncrement{IntervalMs: 250}
	if got, want := a.ToDuration(), 250*time.Millisecond; got != want {
		t.Errorf("ToDuration() = %v, want %v", got, want)
	}
}
