// SPDX-License-Identifier: MPL-2.0

package cuemod

import (
	_ "embed"
	"errors"
	"fmt"

	"cuelang.org/go/cue"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/cueutil"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/shell"
)

var (
	//go:embed module_schema.cue
	moduleSchema string

	// ErrDuplicateCase is returned when two cases of a module share a name.
	ErrDuplicateCase = errors.New("duplicate case name")
)

type (
	// CaseSpec is one entry of a module's test_suite.
	CaseSpec struct {
		Name        string            `json:"name"`
		Run         string            `json:"run"`
		Want        *string           `json:"want,omitempty"`
		WantNumber  *float64          `json:"want_number,omitempty"`
		WantNumbers *[]float64        `json:"want_numbers,omitempty"`
		Decimal     int               `json:"decimal"`
		Env         map[string]string `json:"env,omitempty"`

		// line is the position of the case's run script in the module file.
		line int
	}

	// ModuleSpec is the decoded content of a module file or package marker.
	ModuleSpec struct {
		Description string            `json:"description,omitempty"`
		Env         map[string]string `json:"env,omitempty"`
		TestSuite   *[]CaseSpec       `json:"test_suite,omitempty"`
		Ignore      []string          `json:"ignore,omitempty"`
		Harvest     bool              `json:"harvest"`
	}
)

// HasSuite reports whether the module declares test_suite, even an empty one.
func (s *ModuleSpec) HasSuite() bool {
	return s.TestSuite != nil
}

// Cases returns the declared cases, nil when there are none.
func (s *ModuleSpec) Cases() []CaseSpec {
	if s.TestSuite == nil {
		return nil
	}
	return *s.TestSuite
}

// ParseSpec decodes and validates module file content. file is used for
// error positions.
func ParseSpec(data []byte, file string) (*ModuleSpec, error) {
	res, err := cueutil.ParseAndDecode[ModuleSpec]([]byte(moduleSchema), data, "#Module", cueutil.WithFilename(file))
	if err != nil {
		return nil, err
	}
	spec := res.Value

	seen := make(map[string]bool)
	for i, c := range spec.Cases() {
		if seen[c.Name] {
			return nil, &cueutil.SourceError{
				File:   file,
				Line:   casePos(res.Unified, i, "name", file),
				Issues: []string{fmt.Sprintf("test_suite[%d].name: %v %q", i, ErrDuplicateCase, c.Name)},
				Cause:  ErrDuplicateCase,
			}
		}
		seen[c.Name] = true
		(*spec.TestSuite)[i].line = casePos(res.Unified, i, "run", file)

		// Scripts are parsed up front so a broken one fails the import.
		if _, err := shell.Parse(c.Run, c.Name); err != nil {
			var se *shell.SyntaxError
			line := (*spec.TestSuite)[i].line
			if errors.As(err, &se) && line > 0 {
				line += se.Line - 1
			}
			return nil, &cueutil.SourceError{
				File:   file,
				Line:   line,
				Syntax: true,
				Issues: []string{fmt.Sprintf("test_suite[%d].run: %v", i, err)},
				Cause:  err,
			}
		}
	}
	return spec, nil
}

// casePos returns the line of test_suite[i].<field> inside file, or 0.
func casePos(v cue.Value, i int, field, file string) int {
	pos := v.LookupPath(cue.ParsePath(fmt.Sprintf("test_suite[%d].%s", i, field))).Pos()
	if !pos.IsValid() || pos.Filename() != file {
		return 0
	}
	return pos.Line()
}
