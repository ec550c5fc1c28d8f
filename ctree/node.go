// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ctree

import (
	"fmt"

	"github.com/go-air/dccopt/internal/errs"
)

// ID identifies a node; it is the node's index in its tree's arena.
type ID int32

// NoID is the ID of no node, e.g. the parent of the root.
const NoID ID = -1

// Kind is the kind of a clock network element.
type Kind uint8

const (
	Buffer Kind = iota
	FF          // flip-flop clock pin
	Port        // clock output port
)

func (k Kind) String() string {
	switch k {
	case Buffer:
		return "buffer"
	case FF:
		return "ff"
	case Port:
		return "port"
	}
	return fmt.Sprintf("kind(%d)", k)
}

// DCC is the duty cycle correction type deployed at a node.
type DCC uint8

const (
	DCCNone DCC = iota
	DCC20
	DCC40
	DCC80
)

var dccPercent = [...]int{0, 20, 40, 80}

// Percent returns the duty cycle percentage of d, 0 for DCCNone.
func (d DCC) Percent() int {
	if int(d) >= len(dccPercent) {
		return -1
	}
	return dccPercent[d]
}

func (d DCC) String() string {
	switch d {
	case DCCNone:
		return "none"
	case DCC20, DCC40, DCC80:
		return fmt.Sprintf("%d%%", d.Percent())
	}
	return fmt.Sprintf("dcc(%d)", d)
}

// DCCFromPercent is the inverse of Percent.
func DCCFromPercent(p int) (DCC, error) {
	for i, q := range dccPercent {
		if q == p {
			return DCC(i), nil
		}
	}
	return DCCNone, errs.Ef(errs.Encoding, "dcc", "undefined duty cycle %d%%", p)
}

// Bits returns the values of the two DCC variables coding d:
//
//  none 00, 20% 01, 40% 10, 80% 11
func (d DCC) Bits() (b0, b1 bool, err error) {
	if d > DCC80 {
		return false, false, errs.Ef(errs.Encoding, "dcc", "undefined dcc type %d", d)
	}
	return d&2 != 0, d&1 != 0, nil
}

// DCCFromBits is the inverse of Bits.
func DCCFromBits(b0, b1 bool) DCC {
	var d DCC
	if b0 {
		d |= 2
	}
	if b1 {
		d |= 1
	}
	return d
}

// Node is a clock buffer or a clock sink.
type Node struct {
	Name     string
	ID       ID
	Kind     Kind
	Depth    int
	Wire     float64 // wire delay into the node
	Gate     float64 // intrinsic gate delay, 0 for sinks
	Parent   ID
	Children []ID

	Used   bool // on some optimized path
	Masked bool // no DCC (nor header) may be placed here

	DCC      DCC
	Lib      int // header library index, -1 for none
	Gated    bool
	GateProb float64 // probability the gated clock is enabled

	Inserted    bool
	InsertDelay float64
}

// Sink reports whether n has no children.
func (n *Node) Sink() bool {
	return len(n.Children) == 0
}

// Leader reports whether n carries a threshold voltage header.
func (n *Node) Leader() bool {
	return n.Lib >= 0
}

// Var returns the i'th (0, 1 or 2) boolean variable of n.  Variables 0 and 1
// code the DCC type, variable 2 is true iff n is a header leader.
func (n *Node) Var(i int) int {
	return Var(n.ID, i)
}

// Var returns the i'th boolean variable of the node with ID id.
func Var(id ID, i int) int {
	return 3*int(id) + 1 + i
}

// VarNode returns the node ID and slot of variable v.
func VarNode(v int) (ID, int) {
	return ID((v - 1) / 3), (v - 1) % 3
}

func (n *Node) String() string {
	return fmt.Sprintf("%s#%d", n.Name, n.ID)
}
