package queries

import (
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/pkg/errs"
)

func validOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	return nil
}
