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
)

// ServerOption is a functional option for configuring the Listener.
type ServerOption func(*serverOptions)

type serverOptions struct {
	logger      *slog.Logger
	readTimeout time.Duration
}

func defaultServerOptions() *serverOptions {
	return &serverOptions{
		logger:      slog.Default(),
		readTimeout: 0,
	}
}

// WithServerLogger sets the logger used for connection and dispatch events.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(o *serverOptions) {
		o.logger = logger
	}
}

// WithReadTimeout bounds how long a connection may sit idle without a
// complete frame before it is closed. The default is no deadline at all:
// a Modbus master may poll at arbitrarily long intervals, and a handler
// should exit only on peer close, I/O error, or supervisor shutdown, not
// on a timer. There is no connection-count cap either: every accepted
// connection gets its own goroutine for the life of the listener.
func WithReadTimeout(d time.Duration) ServerOption {
	return func(o *serverOptions) {
		o.readTimeout = d
	}
}
