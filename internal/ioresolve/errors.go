package ioresolve

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/errcode"
)

func MappingWriteError(path string, err error) error {
	msg := "Cannot write lineage mapping <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.MappingWriteError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot write mapping %s: %w",
			fn, path, err),
	}
}
