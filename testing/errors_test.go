package testing

import "errors"

var errAssert = errors.New("injected failure")
