package calls

import (
	"errors"
	"fmt"
)

var ErrUnknownRoute = errors.New("route has no arrival data at this station")

type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}
