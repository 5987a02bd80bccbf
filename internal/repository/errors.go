package repository

import "errors"

var (
	// ErrRecordNotFound indicates no catalog record has the requested id
	ErrRecordNotFound = errors.New("classification record not found")

	// ErrCatalogEmpty indicates the catalog has no records to classify against
	ErrCatalogEmpty = errors.New("catalog is empty")
)
