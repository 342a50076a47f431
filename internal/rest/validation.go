package rest

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"codMarket/domain"
	"codMarket/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const requestTimeout = 10 * time.Second

// newValidator reports fields by their JSON names and knows the dzphone tag.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := utils.RegisterPhoneValidation(v); err != nil {
		panic(fmt.Sprintf("rest: register dzphone validation: %v", err))
	}

	return v
}

// validationError turns validator output into one message per field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewValidationError(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fieldPath(fe.Namespace())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "dzphone":
			msgs = append(msgs, field+" must match 05/06/07 followed by 8 digits")
		case "email":
			msgs = append(msgs, field+" must be a valid e-mail address")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}

	return domain.NewValidationError(msgs...)
}

// fieldPath drops the root struct name: "PlaceOrderRequest.guest_info.phone" -> "guest_info.phone".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func bindError() error {
	return domain.NewValidationError("invalid request body")
}

func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.NewValidationError(fmt.Sprintf("invalid %s", name))
	}
	return uint(id), nil
}
