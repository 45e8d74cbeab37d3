package service

import (
	"database/sql"
	"errors"

	appErrors "github.com/college-icrs/icrs-api/pkg/errors"
)

// notFoundOrInternal maps a repository miss to NotFound and anything else to Internal.
func notFoundOrInternal(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMsg)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internalMsg)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func forbidden(message string) error {
	return appErrors.Clone(appErrors.ErrForbidden, message)
}
