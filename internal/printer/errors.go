package printer

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownPrinter indicates the requested printer id is not part
	// of the configured fleet.
	ErrUnknownPrinter = errors.New("printer not found")

	// ErrPrinterUnavailable indicates the printer class needed for a
	// job has no configured driver.
	ErrPrinterUnavailable = errors.New("printer not available")
)
