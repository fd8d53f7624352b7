package harness

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/osdldbt/dbt5-sub001/internal/frame"
)

// checkArgNames verifies that named args cover params exactly.
func checkArgNames(args map[string]any, params []frame.Param) error {
	known := make(map[string]bool, len(params))
	var missing []string
	for _, p := range params {
		known[p.Name] = true
		if _, ok := args[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing args: %s", strings.Join(missing, ", "))
	}

	var unknown []string
	for name := range args {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown args: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// bindArgs orders named YAML values by params. Values are converted by
// their own YAML type, not the parameter's, so a mistyped value reaches
// the engine and fails as INVALID_ARGUMENTS.
func bindArgs(args map[string]any, params []frame.Param) (frame.Args, error) {
	out := make(frame.Args, len(params))
	for i, p := range params {
		v, err := toValue(args[p.Name])
		if err != nil {
			return nil, fmt.Errorf("arg %q: %w", p.Name, err)
		}
		out[i] = v
	}
	return out, nil
}

// toValue converts a YAML-parsed value to a frame argument.
func toValue(val any) (frame.Value, error) {
	switch v := val.(type) {
	case nil:
		return frame.Value{}, fmt.Errorf("null values are not supported")
	case string:
		return frame.String(v), nil
	case int:
		return frame.Int(int64(v)), nil
	case int64:
		return frame.Int(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return frame.Value{}, fmt.Errorf("integer %d overflows int64", v)
		}
		return frame.Int(int64(v)), nil
	case float64:
		return frame.Decimal(decimal.NewFromFloat(v)), nil
	case []any:
		ss := make([]string, len(v))
		for i, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return frame.Value{}, fmt.Errorf("array[%d]: want string, got %T", i, elem)
			}
			ss[i] = s
		}
		return frame.Strings(ss...), nil
	default:
		return frame.Value{}, fmt.Errorf("unsupported type %T", val)
	}
}
