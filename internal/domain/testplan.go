package domain

import (
	"strings"
	"time"
)

// TestPlan groups case nodes for a test run.
type TestPlan struct {
	ID        int64
	Name      string `validate:"required,notblank"`
	CreatedAt time.Time
}

func (p *TestPlan) Validate() error {
	return validateStruct(p)
}

// Keyword is a free-form tag attached to nodes.
type Keyword struct {
	ID   int64
	Name string `validate:"required,notblank"`
}

// NormalizeKeyword trims and lowercases a keyword so tags compare equal
// regardless of how they were typed.
func NormalizeKeyword(s string) (string, error) {
	k := Keyword{Name: strings.ToLower(strings.TrimSpace(s))}
	if err := validateStruct(&k); err != nil {
		return "", err
	}
	return k.Name, nil
}
