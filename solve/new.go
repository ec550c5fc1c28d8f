// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package solve

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/go-air/dccopt/config"
)

// New creates the Solver selected by o.  The returned close function
// releases what the solver holds, such as the exec run directory.
func New(o config.Solver, log logrus.FieldLogger) (Solver, func() error, error) {
	timeout := time.Duration(o.Timeout * float64(time.Second))
	nop := func() error { return nil }
	switch o.Kind {
	case "exec":
		x, e := NewExec(o.Command, o.Dir, log)
		if e != nil {
			return nil, nil, e
		}
		x.Timeout = timeout
		x.Keep = o.Keep
		return x, x.Close, nil
	case "crisp":
		return &Crisp{Addr: o.Addr, Timeout: timeout, Log: log}, nop, nil
	default:
		return &Gini{Timeout: timeout}, nop, nil
	}
}
