package models

import "errors"

// ErrInvalidInput indicates a required field is missing or zero-valued.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidState indicates an operation against an entity in the wrong
// lifecycle state, such as selling an already-SOLD load.
var ErrInvalidState = errors.New("invalid state")

// ErrNotFound indicates a referenced entity does not exist.
var ErrNotFound = errors.New("not found")
