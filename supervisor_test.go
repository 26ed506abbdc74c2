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
	"net"
	"testing"
	"time"
)

func TestSupervisor_RunAndShutdown(t *testing.T) {
	store := NewRegisterStore(10, 10, 10, 10)
	sup := NewSupervisor(store, UnitID(1), "127.0.0.1:0", nil)

	done := make(chan error, 1)
	go func() {
		done <- sup.Run(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)

	if err := sup.Shutdown(); err != nil {
		t.Errorf("Shutdown: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v after Shutdown, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}

func TestSupervisor_OnlyEnabledWorkersStart(t *testing.T) {
	store := NewRegisterStore(10, 10, 10, 10)
	banks := map[Bank]AutoIncrementConfig{
		BankHolding: {Enabled: true, Addresses: []uint16{0}, Interval: 5 * time.Millisecond, Increment: 1, Max: 65535},
		BankInput:   {Enabled: false},
	}
	sup := NewSupervisor(store, UnitID(1), "127.0.0.1:0", banks)

	if len(sup.workers) != 1 {
		t.Fatalf("len(workers) = %d, want 1 (input disabled)", len(sup.workers))
	}
	if sup.workers[0].bank != BankHolding {
		t.Errorf("enabled worker bank = %v, want holding", sup.workers[0].bank)
	}
}

func TestSupervisor_ServesConnections(t *testing.T) {
	store := NewRegisterStore(10, 10, 10, 10)
	sup := NewSupervisor(store, UnitID(1), "127.0.0.1:0", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- sup.Run(ctx) }()

	var addr net.Addr
	for i := 0; i < 50; i++ {
		if addr = sup.listener.Addr(); addr != nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if addr == nil {
		t.Fatal("supervisor listener never bound")
	}

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	req := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x01, byte(FuncReadExceptionStatus)}
	conn.Write(req)
	want := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x03, 0x01, byte(FuncReadExceptionStatus), 0x00}
	got := readExact(t, conn, len(want))
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("response = %x, want %x", got, want)
		}
	}

	sup.Shutdown()
	<-runErr
}
