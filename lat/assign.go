// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package lat

import "github.com/go-air/dccopt/ctree"

// Assign is a hypothetical decoration of the nodes of one path: at most two
// DCCs and two headers, everything else undecorated.
type Assign struct {
	DCCs    [2]DCCAt
	NDCC    int
	Leaders [2]LeaderAt
	NLead   int
}

// DCCAt places a DCC.
type DCCAt struct {
	ID   ctree.ID
	Type ctree.DCC
}

// LeaderAt places a header.
type LeaderAt struct {
	ID  ctree.ID
	Lib int
}

// AddDCC adds a DCC to a.
func (a *Assign) AddDCC(id ctree.ID, t ctree.DCC) {
	a.DCCs[a.NDCC] = DCCAt{ID: id, Type: t}
	a.NDCC++
}

// AddLeader adds a header to a.
func (a *Assign) AddLeader(id ctree.ID, lib int) {
	a.Leaders[a.NLead] = LeaderAt{ID: id, Lib: lib}
	a.NLead++
}

func (a *Assign) DCCAt(id ctree.ID) ctree.DCC {
	for i := 0; i < a.NDCC; i++ {
		if a.DCCs[i].ID == id {
			return a.DCCs[i].Type
		}
	}
	return ctree.DCCNone
}

func (a *Assign) LibAt(id ctree.ID) int {
	for i := 0; i < a.NLead; i++ {
		if a.Leaders[i].ID == id {
			return a.Leaders[i].Lib
		}
	}
	return -1
}
