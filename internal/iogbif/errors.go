package iogbif

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/errcode"
)

func EmptyLineageError(assay string) error {
	msg := "Cannot resolve empty lineage from assay <em>%s</em>"
	vars := []any{assay}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.EmptyLineageError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: empty lineage for assay %q",
			fn, assay),
	}
}
