// Package validate registers the custom binding tags used by request DTOs.
package validate

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 10-20 chars of letters, digits and hyphens, alphanumeric at both ends.
var txnIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{8,18}[A-Za-z0-9]$`)

// TransactionID reports whether s is an acceptable payment transaction id.
func TransactionID(s string) bool {
	return txnIDPattern.MatchString(s)
}

func txnID(fl validator.FieldLevel) bool {
	return TransactionID(fl.Field().String())
}

// Register installs the custom tags on gin's validator. Safe to call more than once.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("txnid", txnID)
}
