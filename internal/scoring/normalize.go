package scoring

import (
	"fmt"

	"github.com/sells-group/leadscore/internal/model"
)

// NormalizeOffer coerces any offer-like value into a canonical model.Offer.
// Accepted shapes: a model.Offer (or pointer), a map with name/value_props/
// ideal_use_cases keys, a bare list (treated as the ideal use cases), or any
// other scalar (stringified into the name). Single non-list values for the
// list fields are wrapped into singleton slices; absent values become empty
// slices. Never fails, side-effect-free, and idempotent.
func NormalizeOffer(v any) model.Offer {
	switch o := v.(type) {
	case model.Offer:
		o.ValueProps = ensureSlice(o.ValueProps)
		o.IdealUseCases = ensureSlice(o.IdealUseCases)
		return o
	case *model.Offer:
		if o == nil {
			return model.Offer{ValueProps: []string{}, IdealUseCases: []string{}}
		}
		return NormalizeOffer(*o)
	case map[string]any:
		return model.Offer{
			Name:          stringifyOr(o["name"], ""),
			ValueProps:    toStringSlice(o["value_props"]),
			IdealUseCases: toStringSlice(o["ideal_use_cases"]),
		}
	case []string:
		return model.Offer{Name: "N/A", ValueProps: []string{}, IdealUseCases: ensureSlice(o)}
	case []any:
		return model.Offer{Name: "N/A", ValueProps: []string{}, IdealUseCases: toStringSlice(o)}
	case nil:
		return model.Offer{ValueProps: []string{}, IdealUseCases: []string{}}
	default:
		return model.Offer{
			Name:          fmt.Sprint(v),
			ValueProps:    []string{},
			IdealUseCases: []string{},
		}
	}
}

// toStringSlice converts a value to a string slice: nil becomes empty,
// slices are stringified element-wise, and any other value is wrapped
// into a singleton.
func toStringSlice(v any) []string {
	switch s := v.(type) {
	case nil:
		return []string{}
	case []string:
		return ensureSlice(s)
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if s == "" {
			return []string{}
		}
		return []string{s}
	default:
		return []string{fmt.Sprint(v)}
	}
}

func stringifyOr(v any, fallback string) string {
	if v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func ensureSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
