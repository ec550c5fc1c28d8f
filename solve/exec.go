// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package solve

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/go-air/dccopt/cnf"
	"github.com/go-air/dccopt/internal/errs"
)

// Exec runs an external solver process per problem.
//
// The problem is written to <Dir>/run-<uuid>/<name>.cnf and the command is
// run with that path and the result path <name>.out appended, in the
// manner of minisat:
//
//  minisat run-.../tc-400.cnf run-.../tc-400.out
//
// The result file is read by ReadResult.  Exit statuses 10 and 20 (the SAT
// competition convention for SAT and UNSAT) are not errors.
type Exec struct {
	Cmd     string
	Timeout time.Duration
	Keep    bool
	Log     logrus.FieldLogger

	root string
	errs bytes.Buffer
}

// NewExec creates an Exec running cmd in a fresh run directory below dir.
func NewExec(cmd, dir string, log logrus.FieldLogger) (*Exec, error) {
	if strings.TrimSpace(cmd) == "" {
		return nil, errs.Ef(errs.Config, "exec", "empty solver command")
	}
	root := filepath.Join(dir, "run-"+uuid.New().String())
	if e := os.MkdirAll(root, 0755); e != nil {
		return nil, errs.E(errs.Config, "exec", e)
	}
	return &Exec{Cmd: cmd, Log: log, root: root}, nil
}

// Root returns the directory holding the exchanged files.
func (x *Exec) Root() string {
	return x.root
}

// Close removes the run directory unless Keep is set.
func (x *Exec) Close() error {
	if x.Keep {
		return nil
	}
	return os.RemoveAll(x.root)
}

// Solve implements Solver.
func (x *Exec) Solve(ctx context.Context, p *cnf.Problem) (*Result, error) {
	if x.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.Timeout)
		defer cancel()
	}
	name := p.Name
	if name == "" {
		name = "problem"
	}
	in := filepath.Join(x.root, name+".cnf")
	out := filepath.Join(x.root, name+".out")
	if e := x.write(in, p); e != nil {
		return nil, e
	}
	if !x.Keep {
		defer os.Remove(in)
		defer os.Remove(out)
	}
	if e := x.run(ctx, in, out); e != nil {
		return nil, e
	}
	f, e := os.Open(out)
	if e != nil {
		return nil, errs.E(errs.Protocol, "exec", errors.Wrap(e, "missing result file"))
	}
	defer f.Close()
	r, e := ReadResult(f, p.MaxVar())
	if e != nil {
		return nil, errors.Wrapf(e, "%s", out)
	}
	return r, nil
}

func (x *Exec) write(path string, p *cnf.Problem) error {
	f, e := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if e != nil {
		return errs.E(errs.Protocol, "exec", e)
	}
	if _, e := p.WriteTo(f); e != nil {
		f.Close()
		return errs.E(errs.Protocol, "exec", e)
	}
	if e := f.Close(); e != nil {
		return errs.E(errs.Protocol, "exec", e)
	}
	return nil
}

func (x *Exec) run(ctx context.Context, in, out string) error {
	parts := strings.Fields(x.Cmd)
	parts = append(parts, in, out)
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	x.errs.Reset()
	cmd.Stderr = &x.errs
	start := time.Now()
	e := cmd.Run()
	if x.Log != nil {
		x.Log.Debugf("%s: %s", filepath.Base(in), time.Since(start))
	}
	if e == nil {
		return nil
	}
	if ctx.Err() != nil {
		return errs.E(errs.Canceled, "exec", ctx.Err())
	}
	if exitErr, ok := e.(*exec.ExitError); ok {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			switch status.ExitStatus() {
			case 10, 20:
				return nil
			}
		}
	}
	return errs.E(errs.Protocol, "exec", errors.Wrapf(e, "%s: %s", x.Cmd, strings.TrimSpace(x.errs.String())))
}
