package share

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/nachoo07/sistemaInterno-sub000/core"
)

var (
	// custom validation tags & texts
	stateTag          = "sharestate"
	stateText         = "must be one of Pending, Overdue, Paid"
	paymentMethodTag  = "paymentmethod"
	paymentMethodText = "must be one of Cash, Transfer"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(stateTag, stateValidation)
	core.RegisterCustomTranslation(validate, translator, stateTag, stateText)

	_ = validate.RegisterValidation(paymentMethodTag, paymentMethodValidation)
	core.RegisterCustomTranslation(validate, translator, paymentMethodTag, paymentMethodText)
}

func stateValidation(fl validator.FieldLevel) bool {
	return State(fl.Field().String()).IsValid()
}

func paymentMethodValidation(fl validator.FieldLevel) bool {
	return PaymentMethod(fl.Field().String()).IsValid()
}
