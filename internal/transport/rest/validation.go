package rest

import (
	"github.com/abgdnv/storemanager/internal/service"
	"github.com/go-playground/validator/v10"
)

// Response messages for payload validation failures. Worded and ordered the way
// clients of this API expect them; a missing field is a 400, a field that is
// present but out of range is a 422.
const (
	msgNameRequired      = `"name" is required`
	msgNameTooShort      = `"name" length must be at least 5 characters long`
	msgQuantityRequired  = `"quantity" is required`
	msgQuantityTooLow    = `"quantity" must be larger than or equal to 1`
	msgProductIDRequired = `"productId" is required`
	msgBodyMustBeArray   = "body must be an array"
	msgDuplicateProduct  = `duplicate "productId" in sale`
)

// requestError carries the HTTP status and message of a rejected payload.
type requestError struct {
	status  int
	message string
}

// payloadValidator is the validation layer: it checks inbound payloads field by
// field in a fixed order and short-circuits on the first violation.
type payloadValidator struct {
	validate *validator.Validate
}

func newPayloadValidator() *payloadValidator {
	return &payloadValidator{validate: validator.New()}
}

// Product validates a product payload. Check order: name present, name length,
// quantity present, quantity threshold.
func (v *payloadValidator) Product(p service.ProductCreateDto) *requestError {
	if p.Name == nil || v.validate.Var(*p.Name, "required") != nil {
		return &requestError{status: 400, message: msgNameRequired}
	}
	if v.validate.Var(*p.Name, "min=5") != nil {
		return &requestError{status: 422, message: msgNameTooShort}
	}
	if p.Quantity == nil {
		return &requestError{status: 400, message: msgQuantityRequired}
	}
	if v.validate.Var(*p.Quantity, "gte=1") != nil {
		return &requestError{status: 422, message: msgQuantityTooLow}
	}
	return nil
}

// Sale validates a sale payload. Every line item is walked in order and the
// first violation found across the whole array is surfaced. A productId may
// appear only once per sale.
func (v *payloadValidator) Sale(items []service.SaleItemCreateDto) *requestError {
	if len(items) == 0 {
		return &requestError{status: 400, message: msgBodyMustBeArray}
	}
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if item.ProductID == nil {
			return &requestError{status: 400, message: msgProductIDRequired}
		}
		if item.Quantity == nil {
			return &requestError{status: 400, message: msgQuantityRequired}
		}
		if v.validate.Var(*item.Quantity, "gte=1") != nil {
			return &requestError{status: 422, message: msgQuantityTooLow}
		}
		if _, dup := seen[*item.ProductID]; dup {
			return &requestError{status: 422, message: msgDuplicateProduct}
		}
		seen[*item.ProductID] = struct{}{}
	}
	return nil
}
