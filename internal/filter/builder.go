package filter

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Document field names the rules target.
const (
	FieldFirstName       = "firstName"
	FieldAge             = "age"
	FieldSkills          = "skills"
	FieldTerminationDate = "terminationDate"
)

// Query parameter names.
const (
	ParamFirstName  = "first_name"
	ParamTerminated = "terminated"
	ParamAge        = "age"
	ParamAgeLt      = "age_lt"
	ParamAgeGt      = "age_gt"
	ParamSkills     = "skills"
)

// Echo is the normalized view of the filter inputs, fed back into the filter form.
type Echo struct {
	FirstName  string   `json:"first_name"`
	Terminated string   `json:"terminated"`
	Age        string   `json:"age"`
	AgeLt      string   `json:"age_lt"`
	AgeGt      string   `json:"age_gt"`
	Skills     []string `json:"skills"`
}

// Build turns raw query parameters into Criteria and the Echo used for re-display.
func Build(q url.Values) (Criteria, Echo) {
	var c Criteria

	c.Set(firstNameRule(q))
	c.Set(terminatedRule(q))
	c.Set(mergeAge(ageRangeRule(q), ageExactRule(q)))
	c.Set(skillsRule(q))

	echo := Echo{
		FirstName:  q.Get(ParamFirstName),
		Terminated: q.Get(ParamTerminated),
		Age:        q.Get(ParamAge),
		AgeLt:      q.Get(ParamAgeLt),
		AgeGt:      q.Get(ParamAgeGt),
		Skills:     nonEmpty(q[ParamSkills]),
	}
	return c, echo
}

func firstNameRule(q url.Values) Predicate {
	name := q.Get(ParamFirstName)
	if name == "" {
		return nil
	}
	return Equals{Field: FieldFirstName, Value: name}
}

func terminatedRule(q url.Values) Predicate {
	switch q.Get(ParamTerminated) {
	case "yes":
		return IsNotNull{Field: FieldTerminationDate}
	case "no":
		return IsNull{Field: FieldTerminationDate}
	}
	return nil
}

// ageRangeRule combines age_lt and age_gt into one inclusive range.
// Both names are historical: the bounds are <= and >=.
func ageRangeRule(q url.Values) Predicate {
	var r RangeInclusive
	if s := q.Get(ParamAgeLt); s != "" {
		hi := parseNumber(s)
		r.Hi = &hi
	}
	if s := q.Get(ParamAgeGt); s != "" {
		lo := parseNumber(s)
		r.Lo = &lo
	}
	if r.Lo == nil && r.Hi == nil {
		return nil
	}
	r.Field = FieldAge
	return r
}

func ageExactRule(q url.Values) Predicate {
	s := q.Get(ParamAge)
	if s == "" {
		return nil
	}
	return Equals{Field: FieldAge, Value: parseNumber(s)}
}

// mergeAge resolves the age predicates: an exact age always wins over a range.
func mergeAge(rangePred, exact Predicate) Predicate {
	if exact != nil {
		return exact
	}
	return rangePred
}

func skillsRule(q url.Values) Predicate {
	skills := nonEmpty(q[ParamSkills])
	if len(skills) == 0 {
		return nil
	}
	return ContainsAll{Field: FieldSkills, Values: skills}
}

// parseNumber returns NaN for anything that is not a number. The NaN is
// kept in the predicate rather than rejected.
func parseNumber(s string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
