// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package errs

import (
	"io"
	"testing"

	"github.com/pkg/errors"
)

func TestKindOf(t *testing.T) {
	e := E(Protocol, "solve", io.ErrUnexpectedEOF)
	if KindOf(e) != Protocol {
		t.Errorf("kind %s", KindOf(e))
	}
	w := errors.Wrap(e, "iteration 3")
	if !Is(w, Protocol) {
		t.Errorf("wrapped kind lost: %s", KindOf(w))
	}
	if errors.Cause(w) != io.ErrUnexpectedEOF {
		t.Errorf("cause %v", errors.Cause(w))
	}
	if KindOf(io.EOF) != Other {
		t.Errorf("plain error classified")
	}
	if Is(nil, Other) {
		t.Errorf("nil is classified")
	}
}

func TestEf(t *testing.T) {
	e := Ef(Invariant, "decode", "var %d", 12)
	if e.Error() != "decode: var 12" {
		t.Errorf("got %q", e.Error())
	}
}
