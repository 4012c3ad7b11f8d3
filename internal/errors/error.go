// Package errors provides custom error types for store manager operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrNoProducts = errors.New("no product was found")
var ErrProductExists = errors.New("product already exists")

var ErrSaleNotFound = errors.New("sale not found")
var ErrNoSales = errors.New("no sale was found")
var ErrSaleItemNotFound = errors.New("sale item not found")

// ErrInsufficientStock is returned when a debit would drive a product's stock negative.
var ErrInsufficientStock = errors.New("such amount is not permitted to sell")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")
