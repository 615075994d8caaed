package main

import (
	"github.com/ezrec/ucrom/translate"
)

var f = translate.From

type ErrArgs []string

func (err ErrArgs) Error() string {
	return f("unexpected arguments: %v", []string(err))
}

type ErrFormat string

func (err ErrFormat) Error() string {
	return f("unknown image format %q", string(err))
}
