// SPDX-License-Identifier: MPL-2.0

package harness

// outcome is the result of processing one candidate: either a value or a
// diagnostic explaining why there is none.
type outcome[T any] struct {
	value T
	diag  *Diagnostic
}

func succeeded[T any](v T) outcome[T] {
	return outcome[T]{value: v}
}

func failed[T any](d Diagnostic) outcome[T] {
	return outcome[T]{diag: &d}
}

// partition splits outcomes into values and diagnostics, each in input order.
func partition[T any](outs []outcome[T]) ([]T, []Diagnostic) {
	values := make([]T, 0, len(outs))
	var diags []Diagnostic
	for _, o := range outs {
		if o.diag != nil {
			diags = append(diags, *o.diag)
			continue
		}
		values = append(values, o.value)
	}
	return values, diags
}
