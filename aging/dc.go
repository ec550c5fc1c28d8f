// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package aging

import "github.com/go-air/dccopt/internal/errs"

// Undistorted is the duty cycle of a clock which has not passed a DCC.
const Undistorted = 0.5

// DutyCycle returns the duty cycle produced by a DCC of the given percentage
// (0 meaning no DCC).  If aged, the constant for a DCC aging under a header
// is returned.
func (t *Tech) DutyCycle(percent int, aged bool) (float64, error) {
	pts := &t.Fresh
	if aged {
		pts = &t.Aged
	}
	switch percent {
	case 0:
		return Undistorted, nil
	case 20:
		return pts[0], nil
	case 40:
		return pts[1], nil
	case 80:
		return pts[2], nil
	}
	return 0, errs.Ef(errs.Encoding, "aging", "undefined DCC percentage %d", percent)
}
