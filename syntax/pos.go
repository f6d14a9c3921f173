// Copyright 2018 The Go Authors. All rights reserved.
// Copyright 2020 Andrew Archibald. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import "fmt"

// PosMax is the largest line or column kept. Larger values saturate.
const PosMax = 1 << 30

// A Pos represents an absolute (line, col) source position in a graph
// file. Columns count bytes from 1.
type Pos struct {
	filename  string
	line, col uint32
}

// MakePos returns a new Pos for the given file, line and column.
func MakePos(filename string, line, col uint) Pos {
	return Pos{filename, sat32(line), sat32(col)}
}

func (pos Pos) String() string {
	if pos.line == 0 {
		if pos.filename == "" {
			return "<unknown position>"
		}
		return pos.filename
	}
	if pos.col == 0 {
		return fmt.Sprintf("%s:%d", pos.filename, pos.line)
	}
	return fmt.Sprintf("%s:%d:%d", pos.filename, pos.line, pos.col)
}

func sat32(x uint) uint32 {
	if x > PosMax {
		return PosMax
	}
	return uint32(x)
}
