// Package errs holds the business error taxonomy shared by services and handlers.
package errs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Conflict codes.
const (
	CodeInvalidTransition = "invalid_transition"
	CodeAlreadyReconciled = "already_reconciled"
	CodeOpenOrderExists   = "open_order_exists"
	CodeDuplicate         = "duplicate"
	CodeOrderClosed       = "order_closed"
	CodeNotCompleted      = "not_completed"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func NotFound(entity string, id interface{}) error {
	return &NotFoundError{Entity: entity, ID: id}
}

type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func Conflict(code, format string, args ...interface{}) error {
	return &ConflictError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Shortfall describes one ingredient that cannot cover an order or adjustment.
type Shortfall struct {
	InventoryItemID uint            `json:"inventory_item_id"`
	ItemName        string          `json:"item_name"`
	Required        decimal.Decimal `json:"required"`
	Available       decimal.Decimal `json:"available"`
	Unit            string          `json:"unit"`
}

type InsufficientStockError struct {
	Items []Shortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		parts = append(parts, fmt.Sprintf("%s (required %s %s, available %s %s)",
			item.ItemName, item.Required, item.Unit, item.Available, item.Unit))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}

// PersistenceError wraps store failures. Its message is never shown to callers.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Persistence wraps err unless it already belongs to the business taxonomy.
func Persistence(op string, err error) error {
	if err == nil || IsBusiness(err) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsBusiness reports whether err is an expected outcome that is shown to the caller verbatim.
func IsBusiness(err error) bool {
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
		is *InsufficientStockError
	)
	return errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ce) || errors.As(err, &is)
}
