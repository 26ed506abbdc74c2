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
	"fmt"

	"go.uber.org/multierr"

	modbus "github.com/zmodsim/zmodsim"
)

// Validate checks configuration correctness and reports every error it
// finds in one pass, joined with multierr, rather than stopping at the
// first. It performs declarative validation only; it must not mutate cfg.
func Validate(cfg *Config) error {
	var errs error

	if cfg.UnitID < 1 || cfg.UnitID > 247 {
		errs = multierr.Append(errs, fmt.Errorf("unit_id %d out of range [1,247]", cfg.UnitID))
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = multierr.Append(errs, fmt.Errorf("port %d out of range [1,65535]", cfg.Port))
	}

	errs = multierr.Append(errs, validateAutoIncrement("holding_auto", cfg.HoldingAuto))
	errs = multierr.Append(errs, validateAutoIncrement("input_auto", cfg.InputAuto))

	return errs
}

// validateAutoIncrement does not reject addresses outside the bank's
// size: per spec they are internally generated configuration, and the
// store silently skips them on each tick rather than failing the worker.
func validateAutoIncrement(name string, a AutoIncrement) error {
	if !a.Enabled {
		return nil
	}

	var errs error
	if a.IntervalMs <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s: %w (got %d)", name, modbus.ErrIntervalNotPositive, a.IntervalMs))
	}
	if a.Increment > a.Max {
		errs = multierr.Append(errs, fmt.Errorf("%s: %w (increment %d, max %d)", name, modbus.ErrIncrementExceedsMax, a.Increment, a.Max))
	}
	return errs
}
