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
	"testing"
	"time"

	"go.uber.org/atomic"
)

func TestIncrementWorker_TicksUntilStopClosed(t *testing.T) {
	store := NewRegisterStore(10, 10, 10, 10)
	cfg := AutoIncrementConfig{
		Enabled:   true,
		Addresses: []uint16{0},
		Interval:  5 * time.Millisecond,
		Increment: 1,
		Max:       65535,
	}
	running := atomic.NewBool(true)
	w := newIncrementWorker(store, BankHolding, cfg, running, slog.Default())

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		w.run(stop)
		close(done)
	}()

	time.Sleep(40 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after stop channel closed")
	}

	got, err := store.ReadHolding(0, 1)
	if err != nil {
		t.Fatalf("ReadHolding: %v", err)
	}
	val := uint16(got[0])<<8 | uint16(got[1])
	if val == 0 {
		t.Error("holding register 0 never incremented")
	}
}

func TestIncrementWorker_StopsWhenRunningCleared(t *testing.T) {
	store := NewRegisterStore(10, 10, 10, 10)
	cfg := AutoIncrementConfig{
		Enabled:   true,
		Addresses: []uint16{0},
		Interval:  5 * time.Millisecond,
		Increment: 1,
		Max:       65535,
	}
	running := atomic.NewBool(true)
	w := newIncrementWorker(store, BankHolding, cfg, running, slog.Default())

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		w.run(stop)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	running.Store(false)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after running flag cleared")
	}
}
