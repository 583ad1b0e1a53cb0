package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"frizo/futures_calculator/internal/position"
)

// trading pair such as BTCUSDT, ETH-USDT or SOL/USDC
var tradingPairPattern = regexp.MustCompile(`^[A-Z0-9]{1,15}[-/]?(USDT|USDC|BUSD|FDUSD|USD|BTC|ETH|BNB)$`)

const (
	DefaultMaxLeverage = 125.0
	MaxPrice           = 1e10
	MaxQuantity        = 1e12
)

// Validator input domain checks shared by every calculator.
type Validator struct {
	validate    *validator.Validate
	maxLeverage float64
}

// New maxLeverage <= 0 or above 125 falls back to 125.
func New(maxLeverage float64) *Validator {
	if maxLeverage <= 0 || maxLeverage > DefaultMaxLeverage {
		maxLeverage = DefaultMaxLeverage
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("tradingpair", func(fl validator.FieldLevel) bool {
		return IsTradingPair(fl.Field().String())
	})
	_ = v.RegisterValidation("side", func(fl validator.FieldLevel) bool {
		side := position.Side(fl.Field().Int())
		return side == position.LONG || side == position.SHORT
	})

	return &Validator{validate: v, maxLeverage: maxLeverage}
}

// IsTradingPair symbol format check
func IsTradingPair(symbol string) bool {
	return tradingPairPattern.MatchString(symbol)
}

// Struct runs the `validate` tags of s.
func (v *Validator) Struct(s interface{}) Errors {
	var errs Errors

	err := v.validate.Struct(s)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.add("", "invalid", "%v", err)
		return errs
	}

	for _, fe := range fieldErrs {
		field := fieldName(fe)
		errs = append(errs, FieldError{
			Field:   field,
			Tag:     fe.Tag(),
			Message: message(field, fe),
		})
	}
	return errs
}

// fieldName namespace without the root struct, e.g. fills[1].price
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "ne":
		return fmt.Sprintf("%s must not be %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
	case "tradingpair":
		return fmt.Sprintf("%s must be a trading pair such as BTCUSDT", field)
	case "side":
		return fmt.Sprintf("%s must be LONG or SHORT", field)
	default:
		return fmt.Sprintf("%s failed %s check", field, fe.Tag())
	}
}
