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

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Load reads cfgFile (if non-empty) through fs and merges it, together
// with ZMODSIM_-prefixed environment variables, over Default(). No CLI
// flags are bound to v: the caller layers explicitly set flags on top of
// the returned Config (§6 "CLI > file > defaults"). fs is injected so
// tests can supply an in-memory filesystem instead of touching disk.
func Load(v *viper.Viper, fs afero.Fs, cfgFile string) (*Config, error) {
	v.SetFs(fs)

	def := Default()
	v.SetDefault("unit_id", def.UnitID)
	v.SetDefault("port", def.Port)
	v.SetDefault("bank_sizes.coils", def.Banks.Coils)
	v.SetDefault("bank_sizes.discrete", def.Banks.Discrete)
	v.SetDefault("bank_sizes.holding", def.Banks.Holding)
	v.SetDefault("bank_sizes.input", def.Banks.Input)
	v.SetDefault("holding_auto.enabled", def.HoldingAuto.Enabled)
	v.SetDefault("holding_auto.interval_ms", def.HoldingAuto.IntervalMs)
	v.SetDefault("holding_auto.increment", def.HoldingAuto.Increment)
	v.SetDefault("holding_auto.max", def.HoldingAuto.Max)
	v.SetDefault("input_auto.enabled", def.InputAuto.Enabled)
	v.SetDefault("input_auto.interval_ms", def.InputAuto.IntervalMs)
	v.SetDefault("input_auto.increment", def.InputAuto.Increment)
	v.SetDefault("input_auto.max", def.InputAuto.Max)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	}

	v.SetEnvPrefix("ZMODSIM")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}
