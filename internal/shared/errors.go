package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Ledger errors
	ErrLedgerCorrupt = fmt.Errorf("ledger file is not a valid JSON array of strings")
	ErrRunInProgress = fmt.Errorf("another sync run holds the ledger lock")

	// Library bridge errors
	ErrScriptFailed   = fmt.Errorf("script execution failed")
	ErrAppUnavailable = fmt.Errorf("media application unavailable")

	// Catalog errors
	ErrAPIRequest = fmt.Errorf("API request failed")
	ErrNoMatch    = fmt.Errorf("no catalog match")

	// Service errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrRunNotFound        = fmt.Errorf("sync run not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
