package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrNoSession       = errors.New("no workbook loaded")
	ErrInvalidWorkbook = errors.New("invalid workbook")
	ErrInvalidImage    = errors.New("invalid image")
)
