// Package feature derives new columns from existing ones. Every
// operation validates its inputs, appends the derived column to the
// table and leaves the source column untouched.
package feature

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/samhitalabs/sync/internal/dataset"
)

// Transform names a numeric transformation.
type Transform string

const (
	TransformLog    Transform = "log"
	TransformSqrt   Transform = "sqrt"
	TransformZScore Transform = "zscore"
	TransformMinMax Transform = "minmax"
)

// ApplyTransform appends a transformed copy of a numeric column, named
// with the transform as suffix (for example "price_log").
func ApplyTransform(t *dataset.Table, column string, tr Transform) error {
	col, ok := t.Column(column)
	if !ok {
		return fmt.Errorf("unknown column %q", column)
	}
	if !col.Type.IsNumeric() {
		return fmt.Errorf("column %q is not numeric", column)
	}

	n := col.Len()
	out := dataset.Column{
		Name:    fmt.Sprintf("%s_%s", column, tr),
		Type:    dataset.TypeFloat,
		Floats:  make([]float64, n),
		Missing: make([]bool, n),
		Width:   64,
	}

	apply, err := transformFunc(col, tr)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		v, present := col.Float(i)
		if !present {
			out.Missing[i] = true
			continue
		}
		out.Floats[i] = apply(v)
	}
	return t.AddColumn(out)
}

// transformFunc validates the column's domain for tr and returns the
// pointwise function.
func transformFunc(col *dataset.Column, tr Transform) (func(float64) float64, error) {
	switch tr {
	case TransformLog:
		if v, ok := outOfDomain(col, func(v float64) bool { return v <= 0 }); ok {
			return nil, fmt.Errorf("log requires positive values, column %q contains %g", col.Name, v)
		}
		return math.Log, nil

	case TransformSqrt:
		if v, ok := outOfDomain(col, func(v float64) bool { return v < 0 }); ok {
			return nil, fmt.Errorf("sqrt requires non-negative values, column %q contains %g", col.Name, v)
		}
		return math.Sqrt, nil

	case TransformZScore:
		vals := col.Floats64()
		if len(vals) < 2 {
			return nil, fmt.Errorf("column %q has too few values to standardize", col.Name)
		}
		mean := stat.Mean(vals, nil)
		std := stat.StdDev(vals, nil)
		if std == 0 {
			return nil, fmt.Errorf("column %q is constant", col.Name)
		}
		return func(v float64) float64 { return (v - mean) / std }, nil

	case TransformMinMax:
		vals := col.Floats64()
		if len(vals) == 0 {
			return nil, fmt.Errorf("column %q has no values", col.Name)
		}
		min, max := vals[0], vals[0]
		for _, v := range vals[1:] {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		if min == max {
			return nil, fmt.Errorf("column %q is constant", col.Name)
		}
		return func(v float64) float64 { return (v - min) / (max - min) }, nil

	default:
		return nil, fmt.Errorf("unknown transform %q", tr)
	}
}

func outOfDomain(col *dataset.Column, bad func(float64) bool) (float64, bool) {
	for i := 0; i < col.Len(); i++ {
		if v, ok := col.Float(i); ok && bad(v) {
			return v, true
		}
	}
	return 0, false
}
