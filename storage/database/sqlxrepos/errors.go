package sqlxrepos

import (
	"database/sql"
	"database/sql/driver"

	"github.com/pkg/errors"

	"github.com/nachoo07/sistemaInterno-sub000/core"
)

// wrapErr annotates err with msg. Errors that leave no usable connection behind
// become shutdown errors so the API process stops serving and can be restarted.
func wrapErr(err error, msg string) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return core.NewShutdownError(err, msg)
	}
	return errors.Wrap(err, msg)
}
