package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/osdldbt/dbt5-sub001/internal/frame"
)

// parseArgs binds name=value pairs to a frame's positional parameters.
// Scalar parameters are required. String array parameters are built from
// repeated pairs and default to an empty array.
func parseArgs(params []frame.Param, pairs []string) (frame.Args, error) {
	byName := make(map[string]frame.Param, len(params))
	for _, p := range params {
		byName[p.Name] = p
	}

	scalars := make(map[string]frame.Value)
	arrays := make(map[string][]string)
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("argument %q: expected name=value", pair)
		}
		p, known := byName[name]
		if !known {
			return nil, fmt.Errorf("unknown argument %q", name)
		}
		if p.Kind == frame.KindStringArray {
			arrays[name] = append(arrays[name], raw)
			continue
		}
		if _, dup := scalars[name]; dup {
			return nil, fmt.Errorf("argument %q given more than once", name)
		}
		v, err := parseScalar(p, raw)
		if err != nil {
			return nil, err
		}
		scalars[name] = v
	}

	args := make(frame.Args, len(params))
	for i, p := range params {
		if p.Kind == frame.KindStringArray {
			args[i] = frame.Strings(arrays[p.Name]...)
			continue
		}
		v, ok := scalars[p.Name]
		if !ok {
			return nil, fmt.Errorf("missing argument %q (%s)", p.Name, p.Kind)
		}
		args[i] = v
	}
	return args, nil
}

func parseScalar(p frame.Param, raw string) (frame.Value, error) {
	switch p.Kind {
	case frame.KindInt32, frame.KindInt64:
		bits := 64
		if p.Kind == frame.KindInt32 {
			bits = 32
		}
		n, err := strconv.ParseInt(raw, 10, bits)
		if err != nil {
			return frame.Value{}, fmt.Errorf("argument %q: %w", p.Name, err)
		}
		return frame.Int(n), nil
	case frame.KindDecimal:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return frame.Value{}, fmt.Errorf("argument %q: %w", p.Name, err)
		}
		return frame.Decimal(d), nil
	case frame.KindString:
		return frame.String(raw), nil
	default:
		return frame.Value{}, fmt.Errorf("argument %q: unsupported kind %s", p.Name, p.Kind)
	}
}
