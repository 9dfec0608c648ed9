package filter

// Predicate is a single matching condition on one document field.
// The concrete variants are Equals, RangeInclusive, IsNull, IsNotNull and ContainsAll.
type Predicate interface {
	FieldName() string
	isPredicate()
}

type Equals struct {
	Field string
	Value any
}

// RangeInclusive matches Lo <= value <= Hi. A nil bound is open.
type RangeInclusive struct {
	Field string
	Lo    *float64
	Hi    *float64
}

type IsNull struct {
	Field string
}

type IsNotNull struct {
	Field string
}

// ContainsAll matches an array field holding every one of Values.
// Extra elements on the document are allowed.
type ContainsAll struct {
	Field  string
	Values []string
}

func (p Equals) FieldName() string         { return p.Field }
func (p RangeInclusive) FieldName() string { return p.Field }
func (p IsNull) FieldName() string         { return p.Field }
func (p IsNotNull) FieldName() string      { return p.Field }
func (p ContainsAll) FieldName() string    { return p.Field }

func (Equals) isPredicate()         {}
func (RangeInclusive) isPredicate() {}
func (IsNull) isPredicate()         {}
func (IsNotNull) isPredicate()      {}
func (ContainsAll) isPredicate()    {}

// Criteria is an AND of predicates, at most one per field, kept in the
// order their fields were first added.
type Criteria struct {
	preds []Predicate
}

// Set adds p, replacing any predicate already held for the same field.
func (c *Criteria) Set(p Predicate) {
	if p == nil {
		return
	}
	for i, existing := range c.preds {
		if existing.FieldName() == p.FieldName() {
			c.preds[i] = p
			return
		}
	}
	c.preds = append(c.preds, p)
}

func (c Criteria) Get(field string) (Predicate, bool) {
	for _, p := range c.preds {
		if p.FieldName() == field {
			return p, true
		}
	}
	return nil, false
}

func (c Criteria) Predicates() []Predicate {
	out := make([]Predicate, len(c.preds))
	copy(out, c.preds)
	return out
}

func (c Criteria) Len() int {
	return len(c.preds)
}
