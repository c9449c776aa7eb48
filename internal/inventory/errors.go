package inventory

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateProductID = errors.New("product id already exists")
	ErrNotFound           = errors.New("product not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrQuantityOverflow   = errors.New("quantity out of range")
	ErrIO                 = errors.New("inventory io")
	ErrParse              = errors.New("inventory parse")
	ErrEncode             = errors.New("inventory encode")

	errUnknownKind = errors.New("unknown product type")
)

// StockError reports a quantity change that would drive stock below zero.
type StockError struct {
	ID        string
	Delta     int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s: id=%s delta=%d available=%d", ErrInsufficientStock, e.ID, e.Delta, e.Available)
}

func (e *StockError) Is(target error) bool { return target == ErrInsufficientStock }

func ioErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}

func parseErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}

func encodeErr(id string, err error) error {
	return fmt.Errorf("%w: id=%s: %w", ErrEncode, id, err)
}
