package ioassay

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/errcode"
)

func AssaysConfigError(path string, err error) error {
	msg := "Cannot load assays file <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.AssaysConfigError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot load assays config: %w",
			fn, err),
	}
}
