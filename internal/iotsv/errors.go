package iotsv

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/errcode"
)

func ReadError(path string, err error) error {
	msg := "Cannot read occurrence table <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.OccurrenceReadError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot read %s: %w",
			fn, path, err),
	}
}

func FormatError(path, detail string) error {
	msg := "Occurrence table <em>%s</em> is malformed: %s"
	vars := []any{path, detail}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.OccurrenceReadError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: %s: %s",
			fn, path, errors.New(detail)),
	}
}

func WriteError(path string, err error) error {
	msg := "Cannot write occurrence table <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.OccurrenceWriteError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot write %s: %w",
			fn, path, err),
	}
}
