package dataset

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Role names a semantically meaningful column.
type Role string

const (
	RoleAmount Role = "amount"
	RoleClass  Role = "class"
	RoleTime   Role = "time"
)

// ErrSchema is matched by every column resolution failure.
var ErrSchema = errors.New("schema error")

// Reason explains why a role could not be resolved.
type Reason string

const (
	ReasonMissing   Reason = "missing"
	ReasonAmbiguous Reason = "ambiguous"
)

// RoleError reports a required role column that is absent or matched more
// than once.
type RoleError struct {
	Role    Role
	Reason  Reason
	Matches []string
}

func (e *RoleError) Error() string {
	if e.Reason == ReasonAmbiguous {
		return fmt.Sprintf("schema error: %s column is ambiguous (matches %s)", e.Role, strings.Join(e.Matches, ", "))
	}
	return fmt.Sprintf("schema error: %s column is missing (expected a column named %q, any case)", e.Role, string(e.Role))
}

func (e *RoleError) Is(target error) bool { return target == ErrSchema }

// Roles is the resolved column layout, computed once per table.
type Roles struct {
	Amount   string   `json:"amount" yaml:"amount"`
	Class    string   `json:"class" yaml:"class"`
	Time     string   `json:"time" yaml:"time"`
	Features []string `json:"features" yaml:"features"`
}

var featureName = regexp.MustCompile(`(?i)^v\d+$`)

// ResolveRoles maps column names to roles by case-insensitive exact match.
// Features keep their first-seen header order.
func ResolveRoles(columns []string) (Roles, error) {
	var r Roles
	matches := map[Role][]string{}
	for _, c := range columns {
		name := strings.TrimSpace(c)
		switch Role(strings.ToLower(name)) {
		case RoleAmount, RoleClass, RoleTime:
			role := Role(strings.ToLower(name))
			matches[role] = append(matches[role], c)
			continue
		}
		if featureName.MatchString(name) {
			r.Features = append(r.Features, c)
		}
	}
	for _, role := range []Role{RoleAmount, RoleClass, RoleTime} {
		m := matches[role]
		switch len(m) {
		case 0:
			return Roles{}, &RoleError{Role: role, Reason: ReasonMissing}
		case 1:
		default:
			return Roles{}, &RoleError{Role: role, Reason: ReasonAmbiguous, Matches: m}
		}
		switch role {
		case RoleAmount:
			r.Amount = m[0]
		case RoleClass:
			r.Class = m[0]
		case RoleTime:
			r.Time = m[0]
		}
	}
	if r.Features == nil {
		r.Features = []string{}
	}
	return r, nil
}

// HeatmapColumns is the ordered correlation column list: features, then
// amount, then class.
func (r Roles) HeatmapColumns() []string {
	out := make([]string, 0, len(r.Features)+2)
	out = append(out, r.Features...)
	return append(out, r.Amount, r.Class)
}
