package common

import "errors"

var ErrUnsupported = errors.New("unsupported operation")
var ErrCorrupt = errors.New("corrupt or invalid data")
var ErrNotFound = errors.New("not found")
