// File: internal/logging/fatal.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package logging

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/xskframe/xskframe/api"
)

// Fatal prints the exact "file:func:line errno/\"message\"" diagnostic
// line spec.md §6 requires on stderr (mirroring original_source's
// __exit_with_error), then logs the same failure as a structured
// logrus record with file/func/line/errno fields attached, before the
// caller exits non-zero.
func Fatal(logger *logrus.Logger, err *api.FatalError) {
	fmt.Fprintf(os.Stderr, "%s:%s:%d %v/%q\n", err.File, err.Func, err.Line, err.Errno, err.Error())

	fields := logrus.Fields{
		"file":  err.File,
		"func":  err.Func,
		"line":  err.Line,
		"errno": err.Errno,
	}
	if err.Inner != nil {
		fields["cause"] = err.Inner.Error()
	}
	logger.WithFields(fields).Error("fatal error, aborting")
}
