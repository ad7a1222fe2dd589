package printer

import "context"

// ReceiptPrinter is the raw ESC/POS transport behind receipt and label
// printing. Implementations open a fresh connection per call.
type ReceiptPrinter interface {
	// Print delivers one complete ESC/POS payload.
	Print(ctx context.Context, payload []byte) error

	// Ping checks that the printer is reachable.
	Ping(ctx context.Context) error
}

// DocumentPrinter is the page-printer transport backed by a print
// queue.
type DocumentPrinter interface {
	// PrintDocument submits a document to the named queue. An empty
	// name selects the default queue.
	PrintDocument(ctx context.Context, printer, title string, doc []byte) error

	// Printers lists the queues the scheduler knows about.
	Printers(ctx context.Context) ([]QueuePrinter, error)
}

// Compile-time checks that the drivers satisfy their interfaces.
var (
	_ ReceiptPrinter  = (*NetworkDriver)(nil)
	_ DocumentPrinter = (*CUPSDriver)(nil)
)
