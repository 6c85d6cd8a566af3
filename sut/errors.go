package sut

import (
	"github.com/pkg/errors"
)

var (
	ErrUnknownTransaction = errors.New("unknown transaction")
	ErrUnsupportedSut     = errors.New("unsupported system under test")
	ErrNotLoaded          = errors.New("the requested record was not found")
)
