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
	"strconv"
	"strings"
)

// ParseAddressList expands the CLI register-list grammar
// `item (',' item)*` where `item := u16 | u16 '-' u16` into a flat,
// order-preserving address slice. Ranges are inclusive on both ends and
// ascending; duplicates are kept verbatim, matching the core's "each
// increment counted once per occurrence" rule for --holding-regs/
// --input-regs.
func ParseAddressList(s string) ([]uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var out []uint16
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, fmt.Errorf("empty item in address list %q", s)
		}

		if dash := strings.IndexByte(item, '-'); dash >= 0 {
			lo, err := parseU16(item[:dash])
			if err != nil {
				return nil, fmt.Errorf("range %q: %w", item, err)
			}
			hi, err := parseU16(item[dash+1:])
			if err != nil {
				return nil, fmt.Errorf("range %q: %w", item, err)
			}
			if hi < lo {
				return nil, fmt.Errorf("range %q: end before start", item)
			}
			for a := lo; ; a++ {
				out = append(out, a)
				if a == hi {
					break
				}
			}
			continue
		}

		v, err := parseU16(item)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", item, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseU16(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
