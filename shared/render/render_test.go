package render_test

import (
	"testing"
	"time"

	"github.com/dracory/querybase/shared/render"
	"github.com/dracory/querybase/shared/types"
	"github.com/stretchr/testify/assert"
)

type fakeEvaluator map[string]any

func (f fakeEvaluator) Evaluate(code string) any { return f[code] }

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		values   []render.Value
		want     string
	}{
		{
			name:     "tight placeholder",
			template: "SELECT * FROM t WHERE d = {{today}}",
			values:   []render.Value{{Name: "today", Value: "2024-01-01"}},
			want:     "SELECT * FROM t WHERE d = 2024-01-01",
		},
		{
			name:     "spaced placeholder",
			template: "SELECT * FROM t WHERE d = '{{ today }}'",
			values:   []render.Value{{Name: "today", Value: "2024-01-01"}},
			want:     "SELECT * FROM t WHERE d = '2024-01-01'",
		},
		{
			name:     "every occurrence and both forms",
			template: "{{a}} {{ a }} {{b}} {{a}}",
			values:   []render.Value{{Name: "b", Value: 2}, {Name: "a", Value: 1}},
			want:     "1 1 2 1",
		},
		{
			name:     "unmatched placeholder stays literal",
			template: "SELECT {{x}}, {{ y }}",
			values:   []render.Value{{Name: "x", Value: 5}},
			want:     "SELECT 5, {{ y }}",
		},
		{
			name:     "no quoting is added",
			template: "WHERE name = {{n}}",
			values:   []render.Value{{Name: "n", Value: "O'Brien"}},
			want:     "WHERE name = O'Brien",
		},
		{
			name:     "error strings are substituted",
			template: "WHERE d = {{d}}",
			values:   []render.Value{{Name: "d", Value: "Error: boom"}},
			want:     "WHERE d = Error: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render.Render(tt.template, tt.values)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, render.Render(tt.template, tt.values), "rendering must be idempotent")
		})
	}
}

func TestRender_AllPlaceholdersSubstituted(t *testing.T) {
	template := "SELECT {{a}}, {{ b }}, {{c}} FROM t WHERE x = {{d}}"
	names := render.Placeholders(template)
	assert.Equal(t, []string{"a", "b", "c", "d"}, names)

	values := make([]render.Value, 0, len(names))
	for _, n := range names {
		values = append(values, render.Value{Name: n, Value: n + "_v"})
	}

	got := render.Render(template, values)
	assert.Equal(t, "SELECT a_v, b_v, c_v FROM t WHERE x = d_v", got)
	assert.Empty(t, render.Placeholders(got))
}

func TestResolve(t *testing.T) {
	params := []types.Parameter{
		{Name: "today", Expression: "today_expr"},
		{Name: "limit", Expression: "limit_expr"},
	}
	eval := fakeEvaluator{"today_expr": "2024-01-01", "limit_expr": 10}

	values := render.Resolve(params, eval)
	assert.Equal(t, []render.Value{
		{Name: "today", Value: "2024-01-01"},
		{Name: "limit", Value: 10},
	}, values)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "NULL", render.Stringify(nil))
	assert.Equal(t, "abc", render.Stringify("abc"))
	assert.Equal(t, "42", render.Stringify(42))
	assert.Equal(t, "1.5", render.Stringify(1.5))
	assert.Equal(t, "true", render.Stringify(true))
	assert.Equal(t, "2024-01-01", render.Stringify(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-01 08:09:10", render.Stringify(time.Date(2024, 1, 1, 8, 9, 10, 0, time.UTC)))
}

func TestUnresolved(t *testing.T) {
	sql := render.Render("SELECT {{a}}, {{ b }}, {{b}}, {{ c}}", []render.Value{{Name: "a", Value: 1}})
	assert.Equal(t, "SELECT 1, {{ b }}, {{b}}, {{ c}}", sql)
	assert.Equal(t, []string{"b"}, render.Unresolved(sql), "malformed tokens are not placeholders")
	assert.Empty(t, render.Unresolved("SELECT 1"))
}

func TestPlaceholders_UnicodeNames(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []string
	}{
		{"cjk spaced", "WHERE d = '{{ 日期 }}'", []string{"日期"}},
		{"accented tight", "WHERE c = {{café}} AND n = {{ número2 }}", []string{"café", "número2"}},
		{"digit first is not a name", "SELECT {{1abc}}", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render.Placeholders(tt.template))
		})
	}

	sql := render.Render("SELECT {{ 日期 }}, {{城市}}", []render.Value{{Name: "日期", Value: "2024-01-01"}})
	assert.Equal(t, "SELECT 2024-01-01, {{城市}}", sql)
	assert.Equal(t, []string{"城市"}, render.Unresolved(sql))
}
