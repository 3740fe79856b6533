package storage

import "errors"

var ErrNotFound = errors.New("record not found in storage")
