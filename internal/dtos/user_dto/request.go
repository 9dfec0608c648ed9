package user_dto

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 30
	// MaxPerPage caps the rows fetched by a single list request.
	MaxPerPage = 1000
)

// UserFormRequest carries the editable record fields of the create and
// update forms after type coercion.
type UserFormRequest struct {
	FirstName string   `validate:"max=100"`
	LastName  string   `validate:"max=100"`
	Age       int      `validate:"gte=0,lte=200"`
	Salary    float64  `validate:"gte=0"`
	Skills    []string `validate:"dive,max=64"`
}

// ParseUserForm coerces the form values. Skills are always an array,
// whether zero, one or many values were posted.
func ParseUserForm(form url.Values) (UserFormRequest, error) {
	req := UserFormRequest{
		FirstName: strings.TrimSpace(form.Get("firstName")),
		LastName:  strings.TrimSpace(form.Get("lastName")),
		Skills:    normalizeSkills(form["skills"]),
	}

	age, err := parseNumber(form.Get("age"))
	if err != nil {
		return req, fmt.Errorf("age: %w", err)
	}
	if age != math.Trunc(age) {
		return req, fmt.Errorf("age: must be a whole number")
	}
	req.Age = int(age)

	salary, err := parseNumber(form.Get("salary"))
	if err != nil {
		return req, fmt.Errorf("salary: %w", err)
	}
	req.Salary = salary

	return req, nil
}

func parseNumber(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	return n, nil
}

func normalizeSkills(values []string) []string {
	skills := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			skills = append(skills, v)
		}
	}
	return skills
}

// ListUsersQuery is the 1-based page selection of the list endpoint.
type ListUsersQuery struct {
	Page    int64
	PerPage int64
}

// ParseListQuery falls back to page 1 and 30 rows for anything absent,
// non-numeric or not positive. per_page is capped at MaxPerPage and page
// is capped so that Offset never overflows.
func ParseListQuery(q url.Values) ListUsersQuery {
	perPage := min(positiveOr(q.Get("per_page"), DefaultPerPage), MaxPerPage)
	page := min(positiveOr(q.Get("page"), DefaultPage), math.MaxInt64/perPage)
	return ListUsersQuery{
		Page:    page,
		PerPage: perPage,
	}
}

func (q ListUsersQuery) Offset() int64 {
	return (q.Page - 1) * q.PerPage
}

func positiveOr(raw string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
