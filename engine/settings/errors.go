package settings

import "errors"

// Fatal configuration errors are returned from Declare and Load. The rest
// report invalid input at runtime.
var (
	ErrDuplicateID      = errors.New("settings: duplicate setting id")
	ErrDuplicateName    = errors.New("settings: duplicate declared name")
	ErrInvalidPredicate = errors.New("settings: invalid predicate")
	ErrInvalidFormat    = errors.New("settings: invalid value format")
	ErrInvalidValue     = errors.New("settings: invalid value")
	ErrNotDeclared      = errors.New("settings: setting is not declared")
	ErrNotClearable     = errors.New("settings: setting cannot be cleared")
)
