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
	"context"
	"log/slog"

	"github.com/sourcegraph/conc"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
)

// Supervisor owns the register store, the listener, and every
// auto-increment worker for one simulated device. It is the thing a
// caller starts and stops; everything underneath is an implementation
// detail of how the simulation stays alive.
type Supervisor struct {
	store    *RegisterStore
	listener *Listener
	workers  []*incrementWorker
	running  *atomic.Bool
	logger   *slog.Logger
	addr     string

	wg   conc.WaitGroup
	stop chan struct{}
}

// NewSupervisor builds a Supervisor from a fully validated configuration.
func NewSupervisor(store *RegisterStore, configuredUnit UnitID, addr string, banks map[Bank]AutoIncrementConfig, opts ...ServerOption) *Supervisor {
	running := atomic.NewBool(false)
	logger := slog.Default()
	for _, opt := range opts {
		o := &serverOptions{logger: logger}
		opt(o)
		logger = o.logger
	}

	engine := NewEngine(store)
	listener := NewListener(engine, configuredUnit, opts...)

	sup := &Supervisor{
		store:    store,
		listener: listener,
		running:  running,
		logger:   logger,
		addr:     addr,
		stop:     make(chan struct{}),
	}

	for bank, cfg := range banks {
		if !cfg.Enabled {
			continue
		}
		sup.workers = append(sup.workers, newIncrementWorker(store, bank, cfg, running, logger))
	}

	return sup
}

// Run starts every enabled worker and then the TCP listener, blocking
// until the listener returns (bind failure, ctx cancellation, or Shutdown
// closing it).
// Bind failures are returned to the caller to report and exit non-zero.
func (s *Supervisor) Run(ctx context.Context) error {
	s.running.Store(true)

	for _, w := range s.workers {
		w := w
		s.wg.Go(func() { w.run(s.stop) })
	}

	err := s.listener.ListenAndServe(ctx, s.addr)
	if err != nil {
		s.logger.Error("listener exited", slog.String("error", err.Error()))
	}
	return err
}

// Shutdown stops accepting new work: it clears the run flag, closes the
// listener (unblocking Accept and every pending connection read), signals
// the workers to stop, and waits for every goroutine in the group to
// return before releasing the store reference.
func (s *Supervisor) Shutdown() error {
	s.running.Store(false)
	close(s.stop)

	var errs error
	if s.listener != nil {
		errs = multierr.Append(errs, s.listener.Close())
	}
	s.wg.Wait()
	s.store = nil
	s.logger.Info("shutdown complete")
	return errs
}

// Metrics returns the listener's request and connection metrics.
func (s *Supervisor) Metrics() map[string]interface{} {
	if s.listener == nil {
		return nil
	}
	return s.listener.Metrics().Collect()
}
