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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/zmodsim/zmodsim/internal/config"

	"github.com/zmodsim/zmodsim"
)

const version = "0.1.0"

var (
	cfgFile string

	unitID   uint8
	port     int
	coils    uint16
	discrete uint16
	holding  uint16
	input    uint16

	holdingAuto     bool
	holdingRegsRaw  string
	holdingInterval int
	holdingInc      uint16
	holdingMax      uint16

	inputAuto     bool
	inputRegsRaw  string
	inputInterval int
	inputInc      uint16
	inputMax      uint16

	generateConfig bool
	outputFormat   string
	verbose        bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "zmodsim",
	Short:   "A Modbus TCP slave (server) simulator",
	Version: version,
	Long: `zmodsim simulates a Modbus TCP slave: it listens on a TCP port, answers
function-code requests against four in-memory register banks, and can drive
background workers that periodically increment selected holding/input
registers to simulate dynamic process values.

Examples:
  # Serve on the default port with 200 holding registers
  zmodsim --holding 200

  # Drive holding register 0 from 0 up to 95 in steps of 5, wrapping to 0, every 250ms
  zmodsim --holding-auto --holding-regs 0 --holding-interval 250 --holding-inc 5 --holding-max 100

  # Print a fully populated config and exit
  zmodsim --generate-config --output yaml`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
	RunE: run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the zmodsim version and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().StringVarP(&cfgFile, "config", "f", "", "config file (json or yaml)")
	rootCmd.Flags().Uint8VarP(&unitID, "unit-id", "u", 0, "Modbus unit id (1-247)")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "TCP port to listen on")
	rootCmd.Flags().Uint16Var(&coils, "coils", 0, "coil bank size")
	rootCmd.Flags().Uint16Var(&discrete, "discrete", 0, "discrete input bank size")
	rootCmd.Flags().Uint16Var(&holding, "holding", 0, "holding register bank size")
	rootCmd.Flags().Uint16Var(&input, "input", 0, "input register bank size")

	rootCmd.Flags().BoolVar(&holdingAuto, "holding-auto", false, "enable the holding-register auto-increment worker")
	rootCmd.Flags().StringVar(&holdingRegsRaw, "holding-regs", "", "holding auto-increment addresses, e.g. 0,2,5-8")
	rootCmd.Flags().IntVar(&holdingInterval, "holding-interval", 0, "holding auto-increment tick interval in ms")
	rootCmd.Flags().Uint16Var(&holdingInc, "holding-inc", 0, "holding auto-increment step")
	rootCmd.Flags().Uint16Var(&holdingMax, "holding-max", 0, "holding auto-increment wrap threshold")

	rootCmd.Flags().BoolVar(&inputAuto, "input-auto", false, "enable the input-register auto-increment worker")
	rootCmd.Flags().StringVar(&inputRegsRaw, "input-regs", "", "input auto-increment addresses, e.g. 0,2,5-8")
	rootCmd.Flags().IntVar(&inputInterval, "input-interval", 0, "input auto-increment tick interval in ms")
	rootCmd.Flags().Uint16Var(&inputInc, "input-inc", 0, "input auto-increment step")
	rootCmd.Flags().Uint16Var(&inputMax, "input-max", 0, "input auto-increment wrap threshold")

	rootCmd.Flags().BoolVar(&generateConfig, "generate-config", false, "print a fully populated config and exit")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "json", "--generate-config format: json, yaml")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")
}

// run is the CLI collaborator described in spec §1: it materializes a
// Config (file, then flag overrides), validates it, expands the
// register-list grammar, and hands a ready supervisor to the core.
func run(cmd *cobra.Command, args []string) error {
	v := viper.New()
	cfg, err := config.Load(v, afero.NewOsFs(), cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := applyFlagOverrides(cfg, cmd); err != nil {
		return err
	}

	if generateConfig {
		return printConfig(cfg)
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	config.Normalize(cfg)

	store := modbus.NewRegisterStore(cfg.Banks.Coils, cfg.Banks.Discrete, cfg.Banks.Holding, cfg.Banks.Input)
	banks := map[modbus.Bank]modbus.AutoIncrementConfig{
		modbus.BankHolding: toWorkerConfig(cfg.HoldingAuto),
		modbus.BankInput:   toWorkerConfig(cfg.InputAuto),
	}
	addr := fmt.Sprintf(":%d", cfg.Port)
	sup := modbus.NewSupervisor(store, modbus.UnitID(cfg.UnitID), addr, banks, modbus.WithServerLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
		sup.Shutdown()
	}()

	logger.Info("starting zmodsim",
		slog.String("addr", addr),
		slog.Int("unit_id", int(cfg.UnitID)))

	if err := sup.Run(ctx); err != nil {
		return fmt.Errorf("listener exited: %w", err)
	}
	return nil
}

func toWorkerConfig(a config.AutoIncrement) modbus.AutoIncrementConfig {
	return modbus.AutoIncrementConfig{
		Enabled:   a.Enabled,
		Addresses: a.Addresses,
		Interval:  a.ToDuration(),
		Increment: a.Increment,
		Max:       a.Max,
	}
}

// applyFlagOverrides layers explicitly set flags on top of the
// file/default-derived cfg (CLI > file > defaults, per §6).
func applyFlagOverrides(cfg *config.Config, cmd *cobra.Command) error {
	flags := cmd.Flags()

	if flags.Changed("unit-id") {
		cfg.UnitID = unitID
	}
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("coils") {
		cfg.Banks.Coils = coils
	}
	if flags.Changed("discrete") {
		cfg.Banks.Discrete = discrete
	}
	if flags.Changed("holding") {
		cfg.Banks.Holding = holding
	}
	if flags.Changed("input") {
		cfg.Banks.Input = input
	}

	if flags.Changed("holding-auto") {
		cfg.HoldingAuto.Enabled = holdingAuto
	}
	if flags.Changed("holding-interval") {
		cfg.HoldingAuto.IntervalMs = holdingInterval
	}
	if flags.Changed("holding-inc") {
		cfg.HoldingAuto.Increment = holdingInc
	}
	if flags.Changed("holding-max") {
		cfg.HoldingAuto.Max = holdingMax
	}
	if flags.Changed("holding-regs") {
		addrs, err := config.ParseAddressList(holdingRegsRaw)
		if err != nil {
			return fmt.Errorf("--holding-regs: %w", err)
		}
		cfg.HoldingAuto.Addresses = addrs
	}

	if flags.Changed("input-auto") {
		cfg.InputAuto.Enabled = inputAuto
	}
	if flags.Changed("input-interval") {
		cfg.InputAuto.IntervalMs = inputInterval
	}
	if flags.Changed("input-inc") {
		cfg.InputAuto.Increment = inputInc
	}
	if flags.Changed("input-max") {
		cfg.InputAuto.Max = inputMax
	}
	if flags.Changed("input-regs") {
		addrs, err := config.ParseAddressList(inputRegsRaw)
		if err != nil {
			return fmt.Errorf("--input-regs: %w", err)
		}
		cfg.InputAuto.Addresses = addrs
	}

	return nil
}

func printConfig(cfg *config.Config) error {
	switch outputFormat {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(cfg)
	case "json", "":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		return fmt.Errorf("unknown --output format %q (want json or yaml)", outputFormat)
	}
}
