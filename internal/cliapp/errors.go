package cliapp

import "errors"

// errUsage marks a missing/malformed positional argument: a caller
// mistake, not an engine failure.
var errUsage = errors.New("cliapp: usage")
