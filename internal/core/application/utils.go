package application

import "github.com/tokengate/tokengated/pkg/errors"

func toError(err error) errors.Error {
	if coded, ok := err.(errors.Error); ok {
		return coded
	}
	return errors.INTERNAL_ERROR.Wrap(err)
}
