// Package render substitutes parameter values into SQL templates.
//
// Placeholders are written {{name}} or {{ name }}. Substitution is purely
// textual: values are not quoted or escaped, and placeholders without a
// matching value are left as they are.
package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dracory/querybase/shared/constants"
	"github.com/dracory/querybase/shared/types"
)

// Value is a resolved parameter.
type Value struct {
	Name  string
	Value any
}

// Evaluator resolves a parameter expression to a value. Implementations
// must not fail; see evaluator.Evaluator.Evaluate.
type Evaluator interface {
	Evaluate(code string) any
}

// Names are Unicode identifiers, matching what Render accepts.
var placeholderRe = regexp.MustCompile(`\{\{ ([\p{L}_][\p{L}\p{N}_]*) \}\}|\{\{([\p{L}_][\p{L}\p{N}_]*)\}\}`)

// Render replaces the spaced and tight forms of every value's placeholder.
func Render(template string, values []Value) string {
	sql := template
	for _, v := range values {
		s := Stringify(v.Value)
		sql = strings.ReplaceAll(sql, "{{ "+v.Name+" }}", s)
		sql = strings.ReplaceAll(sql, "{{"+v.Name+"}}", s)
	}
	return sql
}

// Resolve evaluates params in order.
func Resolve(params []types.Parameter, eval Evaluator) []Value {
	values := make([]Value, 0, len(params))
	for _, p := range params {
		values = append(values, Value{Name: p.Name, Value: eval.Evaluate(p.Expression)})
	}
	return values
}

// Placeholders returns the distinct placeholder names in order of first use.
func Placeholders(template string) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		name := m[1] + m[2]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Unresolved lists the placeholders still present in rendered SQL.
func Unresolved(rendered string) []string {
	return Placeholders(rendered)
}

// Stringify formats a parameter value for substitution.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return t
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(constants.TimestampLayout)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
