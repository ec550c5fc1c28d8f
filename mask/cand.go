// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package mask

import "github.com/go-air/dccopt/ctree"

// Candidates regenerates the DCC placement candidates of every path of t
// from the current masking.
//
// Single sided paths get one single candidate per unmasked node of their
// clock path.  FF-FF paths get singles for the unmasked nodes of the common
// prefix and of each branch, and a pair for every unmasked (start branch,
// end branch) combination.  Other paths get none.
func Candidates(t *ctree.Tree) {
	for _, p := range t.Paths {
		p.Cands = p.Cands[:0]
		if !p.Optimizable() {
			continue
		}
		switch p.Kind {
		case ctree.PIFF, ctree.FFPO:
			for _, id := range Free(t, p.Seqs()[0]) {
				p.Cands = append(p.Cands, ctree.Cand{A: id, B: ctree.NoID})
			}
		case ctree.FFFF:
			sb := Free(t, p.StartBranch())
			eb := Free(t, p.EndBranch())
			for _, id := range Free(t, p.CommonPrefix()) {
				p.Cands = append(p.Cands, ctree.Cand{A: id, B: ctree.NoID})
			}
			for _, id := range sb {
				p.Cands = append(p.Cands, ctree.Cand{A: id, B: ctree.NoID})
			}
			for _, id := range eb {
				p.Cands = append(p.Cands, ctree.Cand{A: id, B: ctree.NoID})
			}
			for _, a := range sb {
				for _, b := range eb {
					p.Cands = append(p.Cands, ctree.Cand{A: a, B: b})
				}
			}
		}
	}
}

// Clear removes every candidate.
func Clear(t *ctree.Tree) {
	for _, p := range t.Paths {
		p.Cands = nil
	}
}
