package browser

import (
	"errors"

	"auth_harness/domain/entities"
)

func isNotFound(err error) bool {
	return errors.Is(err, entities.ErrElementNotFound)
}
