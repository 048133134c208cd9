// SPDX-License-Identifier: MPL-2.0

package cuemod

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/check"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/shell"
)

// buildSuite turns a module's cases into a leaf suite named after the module.
func buildSuite(name, file string, spec *ModuleSpec, sh *shell.Runner) *harness.Suite {
	suite := harness.NewSuite(name)
	for _, c := range spec.Cases() {
		suite.Cases = append(suite.Cases, buildCase(file, c, spec.Env, sh))
	}
	return suite
}

func buildCase(file string, c CaseSpec, moduleEnv map[string]string, sh *shell.Runner) harness.Case {
	env := make(map[string]string, len(moduleEnv)+len(c.Env))
	maps.Copy(env, moduleEnv)
	maps.Copy(env, c.Env)
	label := fmt.Sprintf("%s:%d", file, c.line)

	return harness.Case{
		Name: c.Name,
		Run: func(ctx context.Context) error {
			res, err := sh.Run(ctx, label, c.Run, env)
			if err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("%w: %s exited with status %d%s", harness.ErrCaseFailed, c.Name, res.ExitCode, stderrTail(res.Stderr))
			}
			return verify(c, strings.TrimSpace(res.Stdout))
		},
	}
}

// verify checks out against every expectation the case declares.
func verify(c CaseSpec, out string) error {
	if c.Want != nil {
		if err := check.Equal(out, *c.Want, c.Name+"\n"); err != nil {
			return err
		}
	}
	if c.WantNumber != nil {
		got, err := strconv.ParseFloat(out, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: output %q is not a number", harness.ErrCaseFailed, c.Name, out)
		}
		if err := check.AlmostEqual(got, *c.WantNumber, c.Decimal, c.Name+"\n"); err != nil {
			return err
		}
	}
	if c.WantNumbers != nil {
		got, err := parseNumbers(out)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", harness.ErrCaseFailed, c.Name, err)
		}
		if err := check.SliceAlmostEqual(got, *c.WantNumbers, c.Decimal, c.Name+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func parseNumbers(out string) ([]float64, error) {
	fields := strings.Fields(out)
	nums := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("output field %q is not a number", f)
		}
		nums = append(nums, v)
	}
	return nums, nil
}

func stderrTail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	if i := strings.LastIndex(stderr, "\n"); i >= 0 {
		stderr = stderr[i+1:]
	}
	return ": " + stderr
}
