package entity

import "errors"

var (
	ErrDriverIDRequired      = errors.New("driver id is required")
	ErrDriverNotFound        = errors.New("driver not found")
	ErrRegionNotFound        = errors.New("region not found")
	ErrRegionNameRequired    = errors.New("region name is required")
	ErrInvalidRegionBoundary = errors.New("invalid region boundary")
	ErrDuplicateRegion       = errors.New("duplicate region name")
	ErrOverlappingRegions    = errors.New("region interiors overlap")
	ErrCallbackFailure       = errors.New("transition callback failed")
)
