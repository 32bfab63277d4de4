package controller

import (
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"
)

var ErrInvalidInput = errors.New("invalid input")

var idCounter atomic.Uint64

func (c controller) generateTimeBasedId() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + strconv.FormatUint(idCounter.Add(1), 36)
}

func (c controller) validateInput(input any) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("%w: %v", ErrInvalidInput, validationErrors)
	}

	return nil
}
