package observability

import (
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// RecoverPanic recovers from a panic and logs it with the stack trace.
// Call it deferred at the top of background goroutines:
//
//	go func() {
//		defer observability.RecoverPanic(log, "replica health check")
//		...
//	}()
//
// The panic is not re-raised.
func RecoverPanic(log *logrus.Logger, context string) {
	if r := recover(); r != nil {
		logPanic(log, context, r)
	}
}

// RecoverPanicError is RecoverPanic for goroutines that report through an
// error return, such as errgroup members. The recovered panic is stored in
// *errp so the group sees the failure:
//
//	g.Go(func() (err error) {
//		defer observability.RecoverPanicError(log, "api server", &err)
//		...
//	})
func RecoverPanicError(log *logrus.Logger, context string, errp *error) {
	if r := recover(); r != nil {
		logPanic(log, context, r)
		if errp != nil {
			*errp = fmt.Errorf("panic in %s: %v", context, r)
		}
	}
}

func logPanic(log *logrus.Logger, context string, r interface{}) {
	log.WithFields(logrus.Fields{
		"panic":   r,
		"stack":   string(debug.Stack()),
		"context": context,
	}).Error("PANIC recovered")
}
