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
	"testing"
	"time"
)

func TestCounter_AddAndReset(t *testing.T) {
	var c Counter
	c.Add(3)
	c.Add(4)
	if got := c.Value(); got != 7 {
		t.Errorf("Value() = %d, want 7", got)
	}
	c.Reset()
	if got := c.Value(); got != 0 {
		t.Errorf("Value() after Reset = %d, want 0", got)
	}
}

func TestListener_RequestMetrics(t *testing.T) {
	store := NewRegisterStore(10, 10, 10, 10)
	l := NewListener(NewEngine(store), UnitID(1))
	conn, cleanup := dialTestListener(t, l)
	defer cleanup()

	req := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x01, byte(FuncReadExceptionStatus)}
	conn.Write(req)
	readExact(t, conn, 9)

	time.Sleep(10 * time.Millisecond)

	collected := l.Metrics().Collect()
	if got := collected["requests_total"].(int64); got != 1 {
		t.Errorf("requests_total = %d, want 1", got)
	}
	if got := collected["requests_success"].(int64); got != 1 {
		t.Errorf("requests_success = %d, want 1", got)
	}
	if got := collected["connections_open"].(int64); got != 1 {
		t.Errorf("connections_open = %d, want 1", got)
	}
}
