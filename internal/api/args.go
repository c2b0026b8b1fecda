package api

import (
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

// args reads GraphQL argument maps. Absent and null values are the same to
// graphql-go, so every optional accessor returns nil for both.
type args map[string]any

func (a args) object(name string) args {
	m, _ := a[name].(map[string]any)
	return args(m)
}

func (a args) str(name string) string {
	s, _ := a[name].(string)
	return s
}

func (a args) optStr(name string) *string {
	s, ok := a[name].(string)
	if !ok {
		return nil
	}
	return &s
}

func (a args) optInt(name string) *int {
	var n int
	switch v := a[name].(type) {
	case int:
		n = v
	case int32:
		n = int(v)
	case int64:
		n = int(v)
	case float64:
		n = int(v)
	default:
		return nil
	}
	return &n
}

func (a args) optFloat(name string) *float64 {
	var f float64
	switch v := a[name].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	default:
		return nil
	}
	return &f
}

func (a args) flag(name string) bool {
	b, _ := a[name].(bool)
	return b
}

func (a args) optTime(name string) (*time.Time, error) {
	switch v := a[name].(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &v, nil
	case *time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, &core.ValidationError{Field: name, Reason: "must be an RFC 3339 date-time"}
		}
		return &t, nil
	default:
		return nil, &core.ValidationError{Field: name, Reason: fmt.Sprintf("unsupported value %T", v)}
	}
}

func (a args) optType(name string) (*core.TransactionType, error) {
	s, ok := a[name].(string)
	if !ok {
		return nil, nil
	}
	t, err := core.ParseTransactionType(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (a args) optMoney(name string) (*core.Money, error) {
	f := a.optFloat(name)
	if f == nil {
		return nil, nil
	}
	m, err := core.MoneyFromFloat(*f)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (a args) id(name string) (string, error) {
	id := strings.TrimSpace(a.str(name))
	if id == "" {
		return "", &core.ValidationError{Field: name, Reason: "is required"}
	}
	return id, nil
}
