// Package params coerces raw form input (strings, possibly empty) into the
// strict numeric parameter structs the calculators accept.
package params

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"frizo/futures_calculator/internal/position"
	"frizo/futures_calculator/internal/pyramid"
	"frizo/futures_calculator/internal/validation"
)

type parser struct {
	errs validation.Errors
}

func (p *parser) fail(field, tag, format string, args ...interface{}) {
	p.errs = append(p.errs, validation.FieldError{
		Field:   field,
		Tag:     tag,
		Message: fmt.Sprintf(format, args...),
	})
}

func clean(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
}

// number empty input is rejected
func (p *parser) number(field, raw string) float64 {
	s := clean(raw)
	if s == "" {
		p.fail(field, "required", "%s is required", field)
		return 0
	}
	return p.parse(field, s)
}

// optional empty input yields 0
func (p *parser) optional(field, raw string) float64 {
	s := clean(raw)
	if s == "" {
		return 0
	}
	return p.parse(field, s)
}

func (p *parser) parse(field, s string) float64 {
	v, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.fail(field, "number", "%s must be a number", field)
		return 0
	}
	return v
}

func (p *parser) integer(field, raw string) int {
	s := clean(raw)
	if s == "" {
		p.fail(field, "required", "%s is required", field)
		return 0
	}
	// base 10 only, ToIntE would read "010" as octal
	v, err := cast.ToFloat64E(s)
	if err != nil || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		p.fail(field, "integer", "%s must be a whole number", field)
		return 0
	}
	return int(v)
}

func (p *parser) side(field, raw string) position.Side {
	if strings.TrimSpace(raw) == "" {
		p.fail(field, "required", "%s is required", field)
		return 0
	}
	side, err := position.ParseSide(raw)
	if err != nil {
		p.fail(field, "side", "%s must be LONG or SHORT", field)
		return 0
	}
	return side
}

func (p *parser) strategy(field, raw string) pyramid.Strategy {
	if strings.TrimSpace(raw) == "" {
		return pyramid.EqualRatio
	}
	s, err := pyramid.ParseStrategy(raw)
	if err != nil {
		p.fail(field, "strategy", "%s must be EQUAL_RATIO or DOUBLE_DOWN", field)
		return 0
	}
	return s
}

// percentOrFraction "55" and "0.55" both mean 55%.
func (p *parser) percentOrFraction(field, raw string) float64 {
	v := p.number(field, raw)
	if v > 1 {
		return v / 100
	}
	return v
}

func symbol(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Optional one optional numeric field, 0 when left empty.
func Optional(field, raw string) (float64, validation.Errors) {
	var p parser
	v := p.optional(field, raw)
	return v, p.errs
}
