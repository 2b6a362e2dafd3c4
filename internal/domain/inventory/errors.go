package inventory

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnknownItem          = errors.New("unknown item")
	ErrSameCompartment      = errors.New("source and destination are the same compartment")
	ErrCapacityExceeded     = errors.New("bag is full")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
)

// CapacityError lleva los contadores para el mensaje al usuario.
type CapacityError struct {
	Current int
	Limit   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("bag is full: cannot add new item types (%d/%d)", e.Current, e.Limit)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

type QuantityError struct {
	ItemID    string
	Kind      Kind
	Requested int
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("not enough %s in %s (requested %d)", e.ItemID, e.Kind, e.Requested)
}

func (e *QuantityError) Unwrap() error { return ErrInsufficientQuantity }
