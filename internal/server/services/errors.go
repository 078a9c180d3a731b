package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/server/session"
)

// domainErrors pass through service boundaries unchanged. Anything else
// that escapes a unit of work is a storage failure.
var domainErrors = []error{
	common.ErrValidation,
	common.ErrInvalidConfiguration,
	common.ErrNotFound,
	common.ErrForbidden,
	common.ErrUnauthenticated,
	common.ErrStorage,
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %w", common.ErrStorage, op, err)
}

func requireIdentity(who session.Identity) error {
	if who.Empty() {
		return fmt.Errorf("%w: no session identity", common.ErrUnauthenticated)
	}
	return nil
}
