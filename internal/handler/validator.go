package handler

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-engine/pkg/utils"
)

// NewValidator returns a validator that understands decimal amounts and
// Brazilian tax ids.
//
//	taxid          CPF or CNPJ with valid check digits, punctuation allowed
//	decimal_gt=N   decimal strictly greater than N
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("taxid", validateTaxID)
	_ = v.RegisterValidation("decimal_gt", validateDecimalGT)
	return v
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func validateTaxID(fl validator.FieldLevel) bool {
	return utils.IsValidTaxID(fl.Field().String())
}

func validateDecimalGT(fl validator.FieldLevel) bool {
	value, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	limit, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return false
	}
	return value.GreaterThan(limit)
}
