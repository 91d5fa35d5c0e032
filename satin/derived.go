package satin

import (
	"fmt"
	"math"

	goeval "github.com/edisonguo/govaluate"

	"github.com/nci/oceanl2/masked"
)

func (l *Loader) loadDerived(scn Scene) []error {
	src, ok := l.Config.(DerivedSource)
	if !ok {
		return nil
	}
	defs, err := src.DerivedProducts(scn.FullName())
	if err != nil {
		return []error{err}
	}

	wanted := make(map[string]bool)
	for _, name := range scn.ChannelsToLoad() {
		wanted[name] = true
	}

	var errs []error
	for _, def := range defs {
		if !wanted[def.Name] {
			continue
		}
		data, err := EvaluateDerived(def.Expression, scn.Dataset)
		if err != nil {
			errs = append(errs, &ProductLoadError{Product: def.Name, Err: err})
			continue
		}
		scn.SetDataset(def.Name, data)
	}
	return errs
}

func expressionVariables(expr *goeval.EvaluableExpression) ([]string, error) {
	seen := make(map[string]bool)
	var vars []string
	for _, token := range expr.Tokens() {
		if token.Kind != goeval.VARIABLE {
			continue
		}
		varName, ok := token.Value.(string)
		if !ok {
			return nil, fmt.Errorf("variable token '%v' failed to cast string", token.Value)
		}
		if !seen[varName] {
			seen[varName] = true
			vars = append(vars, varName)
		}
	}
	return vars, nil
}

// EvaluateDerived computes a pixel-wise expression over loaded datasets.
// A pixel is masked when any input is masked there or the result is not
// finite.
func EvaluateDerived(expression string, lookup func(name string) (*masked.Array, bool)) (*masked.Array, error) {
	expr, err := goeval.NewEvaluableExpression(expression)
	if err != nil {
		return nil, err
	}

	vars, err := expressionVariables(expr)
	if err != nil {
		return nil, err
	}
	if len(vars) == 0 {
		return nil, fmt.Errorf("expression %q uses no datasets", expression)
	}

	inputs := make([]*masked.Array, len(vars))
	for i, v := range vars {
		arr, ok := lookup(v)
		if !ok {
			return nil, fmt.Errorf("expression %q needs %s which is not loaded", expression, v)
		}
		if i > 0 && fmt.Sprint(arr.Shape) != fmt.Sprint(inputs[0].Shape) {
			return nil, fmt.Errorf("%s shape %v differs from %s shape %v", v, arr.Shape, vars[0], inputs[0].Shape)
		}
		inputs[i] = arr
	}

	out := &masked.Array{
		Shape: inputs[0].Shape,
		Data:  make([]float64, inputs[0].Len()),
		Mask:  make([]bool, inputs[0].Len()),
	}
	params := make(map[string]interface{}, len(vars))
	for i := range out.Data {
		skip := false
		for j, v := range vars {
			if inputs[j].Mask[i] {
				skip = true
				break
			}
			params[v] = inputs[j].Data[i]
		}
		if skip {
			out.Data[i] = math.NaN()
			out.Mask[i] = true
			continue
		}

		result, err := expr.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("evaluating %q: %v", expression, err)
		}

		var val float64
		switch r := result.(type) {
		case float64:
			val = r
		case bool:
			if r {
				val = 1
			}
		default:
			return nil, fmt.Errorf("expression %q evaluates to %T", expression, result)
		}

		out.Data[i] = val
		out.Mask[i] = math.IsNaN(val) || math.IsInf(val, 0)
	}
	return out, nil
}
