package store

import "errors"

var (
	// ErrConnect indicates the data store could not be reached.
	ErrConnect = errors.New("store connect failed")
	// ErrQuery indicates the pending-view read failed after connecting.
	ErrQuery = errors.New("store query failed")
	// ErrDelete indicates the bulk delete failed after connecting.
	ErrDelete = errors.New("store delete failed")
)
