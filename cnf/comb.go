// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package cnf

// Combos returns every k-subset of {0..n-1} as increasing index slices, in
// lexicographic order.  It returns nil if k < 1 or k > n.
func Combos(n, k int) [][]int {
	if k < 1 || k > n {
		return nil
	}
	var res [][]int
	cur := make([]int, 0, k)
	var rec func(from int)
	rec = func(from int) {
		if len(cur) == k {
			c := make([]int, k)
			copy(c, cur)
			res = append(res, c)
			return
		}
		for i := from; i <= n-(k-len(cur)); i++ {
			cur = append(cur, i)
			rec(i + 1)
			cur = cur[:len(cur)-1]
		}
	}
	rec(0)
	return res
}
