package upgrade

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedModel is the cause of every error reported when the
// schema model cannot be navigated, such as an alias without an owner
// or an entity of an unknown kind. Use errors.Cause to test for it.
var ErrMalformedModel = errors.New("malformed schema model")

// Schema traversal is deeply recursive. Like the xsd parser, we use
// panic/recover to bubble model errors up to the public entry points;
// these panics never escape the package.
type buildError struct {
	message string
	// innermost construct first
	path []string
}

func (err buildError) Error() string {
	if len(err.path) == 0 {
		return err.message
	}
	breadcrumbs := make([]string, 0, len(err.path))
	for i := len(err.path) - 1; i >= 0; i-- {
		breadcrumbs = append(breadcrumbs, err.path[i])
	}
	return "Error at " + strings.Join(breadcrumbs, ">") + ": " + err.message
}

// Cause returns ErrMalformedModel.
func (err buildError) Cause() error { return ErrMalformedModel }

func stop(format string, v ...interface{}) {
	panic(buildError{message: fmt.Sprintf(format, v...)})
}

// breadcrumb must be deferred directly. It records name in the path
// of an unwinding buildError.
func breadcrumb(name string) {
	if r := recover(); r != nil {
		if err, ok := r.(buildError); ok {
			err.path = append(err.path, name)
			panic(err)
		}
		panic(r)
	}
}

// catchBuildError is used in the public entry points to convert a
// buildError panic into an error. Other panics are propagated.
//
// defer catchBuildError(&err)
func catchBuildError(err *error) {
	if r := recover(); r != nil {
		e, ok := r.(buildError)
		if !ok {
			panic(r)
		}
		*err = e
	}
}
