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
	"log/slog"
	"time"

	"go.uber.org/atomic"
)

// incrementWorker repeatedly applies one bank's AutoIncrementConfig to
// store on a ticker, until running flips false or stop is closed.
type incrementWorker struct {
	store   *RegisterStore
	bank    Bank
	cfg     AutoIncrementConfig
	running *atomic.Bool
	logger  *slog.Logger
}

func newIncrementWorker(store *RegisterStore, bank Bank, cfg AutoIncrementConfig, running *atomic.Bool, logger *slog.Logger) *incrementWorker {
	return &incrementWorker{
		store:   store,
		bank:    bank,
		cfg:     cfg,
		running: running,
		logger:  logger,
	}
}

// run blocks until stop is closed or running is cleared, ticking at
// cfg.Interval and incrementing cfg.Addresses by cfg.Increment each tick.
func (w *incrementWorker) run(stop <-chan struct{}) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.logger.Info("worker started",
		slog.String("bank", w.bank.String()),
		slog.Int("addresses", len(w.cfg.Addresses)),
		slog.Duration("interval", w.cfg.Interval))

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !w.running.Load() {
				return
			}
			w.store.Increment(w.bank, w.cfg.Addresses, w.cfg.Increment, w.cfg.Max)
		}
	}
}
