package filter

// Document exposes field values to the in-memory evaluator.
// A field that is absent or null must report ok == false.
type Document interface {
	Lookup(field string) (value any, ok bool)
}

// Matches evaluates the criteria against doc with the same semantics the
// store applies to BSON(). NaN bounds never match.
func (c Criteria) Matches(doc Document) bool {
	for _, p := range c.preds {
		if !matchOne(p, doc) {
			return false
		}
	}
	return true
}

func matchOne(p Predicate, doc Document) bool {
	v, ok := doc.Lookup(p.FieldName())
	switch p := p.(type) {
	case IsNull:
		return !ok
	case IsNotNull:
		return ok
	case Equals:
		if !ok {
			return p.Value == nil
		}
		if a, isNum := toFloat(v); isNum {
			b, want := toFloat(p.Value)
			return want && a == b
		}
		return v == p.Value
	case RangeInclusive:
		n, isNum := toFloat(v)
		if !ok || !isNum {
			return false
		}
		if p.Lo != nil && !(n >= *p.Lo) {
			return false
		}
		if p.Hi != nil && !(n <= *p.Hi) {
			return false
		}
		return true
	case ContainsAll:
		have, isSlice := v.([]string)
		if !ok || !isSlice {
			return false
		}
		set := make(map[string]struct{}, len(have))
		for _, s := range have {
			set[s] = struct{}{}
		}
		for _, want := range p.Values {
			if _, found := set[want]; !found {
				return false
			}
		}
		return true
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
