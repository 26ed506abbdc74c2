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

// Package config loads and validates the fully materialized record the
// simulator core consumes: unit id, port, bank sizes, and the two
// per-bank auto-increment specs. Nothing in this package touches the
// Modbus wire protocol.
package config

// Config is the top-level record produced by flags/file/env and consumed
// by the supervisor.
type Config struct {
	UnitID uint8  `mapstructure:"unit_id" yaml:"unit_id"`
	Port   int    `mapstructure:"port" yaml:"port"`
	Banks  Banks  `mapstructure:"bank_sizes" yaml:"bank_sizes"`

	HoldingAuto AutoIncrement `mapstructure:"holding_auto" yaml:"holding_auto"`
	InputAuto   AutoIncrement `mapstructure:"input_auto" yaml:"input_auto"`
}

// Banks holds the fixed size of each register bank.
type Banks struct {
	Coils    uint16 `mapstructure:"coils" yaml:"coils"`
	Discrete uint16 `mapstructure:"discrete" yaml:"discrete"`
	Holding  uint16 `mapstructure:"holding" yaml:"holding"`
	Input    uint16 `mapstructure:"input" yaml:"input"`
}

// AutoIncrement is the on-disk/flag shape of one bank's background
// mutator. IntervalMs is kept as milliseconds here (matching the CLI
// surface and JSON/YAML contract); ToDuration converts it for the core.
type AutoIncrement struct {
	Enabled    bool     `mapstructure:"enabled" yaml:"enabled"`
	Addresses  []uint16 `mapstructure:"addresses" yaml:"addresses"`
	IntervalMs int      `mapstructure:"interval_ms" yaml:"interval_ms"`
	Increment  uint16   `mapstructure:"increment" yaml:"increment"`
	Max        uint16   `mapstructure:"max" yaml:"max"`
}

// Default returns a Config populated with the simulator's baseline
// defaults: unit 1, port 502, every bank sized 100, both auto-increment
// workers disabled. This is what "--generate-config" emits a concrete
// example on top of.
func Default() *Config {
	return &Config{
		UnitID: 1,
		Port:   502,
		Banks: Banks{
			Coils:    100,
			Discrete: 100,
			Holding:  100,
			Input:    100,
		},
		HoldingAuto: AutoIncrement{Enabled: false, IntervalMs: 1000, Increment: 1, Max: 65535},
		InputAuto:   AutoIncrement{Enabled: false, IntervalMs: 1000, Increment: 1, Max: 65535},
	}
}
