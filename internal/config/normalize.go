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

import "time"

// Normalize applies post-validation normalization. It is allowed to
// mutate cfg and must be called only after Validate succeeds.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// A disabled worker's addresses are never read by the core; clearing
	// them here keeps the record handed to the supervisor from listing
	// targets for a worker that isn't actually running. The step, max
	// and interval are left as they are.
	if !cfg.HoldingAuto.Enabled {
		cfg.HoldingAuto.Addresses = nil
	}
	if !cfg.InputAuto.Enabled {
		cfg.InputAuto.Addresses = nil
	}
}

// ToDuration converts the on-disk millisecond interval into a
// time.Duration for the modbus.AutoIncrementConfig the workers consume.
func (a AutoIncrement) ToDuration() time.Duration {
	return time.Duration(a.IntervalMs) * time.Millisecond
}
