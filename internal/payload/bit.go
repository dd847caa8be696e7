// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package payload

import (
	"encoding/binary"
	"fmt"
	"os"
)

// readBit extracts the raw configuration words from a Xilinx .bit file.
// The informational header (design name, part, date, time) is dropped
// and the big-endian config words are swapped to the byte order the
// configuration engine consumes them in.
func readBit(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	bad := func(what string) error {
		return fmt.Errorf("%s: not a bitstream: %s", name, what)
	}
	u16 := func() (int, bool) {
		if len(data) < 2 {
			return 0, false
		}
		v := int(binary.BigEndian.Uint16(data))
		data = data[2:]
		return v, true
	}
	n, ok := u16()
	if !ok || n > len(data) {
		return nil, bad("truncated sync header")
	}
	data = data[n:]
	if n, ok = u16(); !ok || n != 1 {
		return nil, bad("bad field count")
	}
	for {
		if len(data) == 0 {
			return nil, bad("missing data field")
		}
		key := data[0]
		data = data[1:]
		switch key {
		case 'a', 'b', 'c', 'd':
			n, ok = u16()
			if !ok || n > len(data) {
				return nil, bad("truncated header field")
			}
			data = data[n:]
		case 'e':
			if len(data) < 4 {
				return nil, bad("truncated length field")
			}
			n = int(binary.BigEndian.Uint32(data))
			data = data[4:]
			if n > len(data) {
				return nil, bad("truncated config data")
			}
			if n == 0 || n%4 != 0 {
				return nil, bad("config data is not word sized")
			}
			return swapWords(data[:n]), nil
		default:
			return nil, bad(fmt.Sprintf("unknown field %#02x", key))
		}
	}
}

// swapWords reverses the byte order within each 32-bit word.
func swapWords(in []byte) []byte {
	out := make([]byte, len(in))
	for i := 0; i < len(in); i += 4 {
		out[i] = in[i+3]
		out[i+1] = in[i+2]
		out[i+2] = in[i+1]
		out[i+3] = in[i]
	}
	return out
}
