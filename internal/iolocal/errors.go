package iolocal

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/errcode"
)

func ReadError(path string, err error) error {
	msg := "Cannot read local reference file <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.LocalRefReadError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot read %s: %w",
			fn, path, err),
	}
}

func FormatError(path, detail string) error {
	msg := "Local reference file <em>%s</em> is malformed: %s"
	vars := []any{path, detail}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.LocalRefFormatError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: %s: %s",
			fn, path, errors.New(detail)),
	}
}
