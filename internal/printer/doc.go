// Package printer drives the portal's receipt, label, and document
// printers.
//
// # Printer Fleet
//
// Three printer classes are supported. Thermal receipt printers and
// label printers speak raw ESC/POS over TCP port 9100 through
// NetworkDriver. A4 document printers sit behind the CUPS scheduler
// and receive jobs through CUPSDriver, which shells out to lp and
// lpstat.
//
// # Payloads
//
// Builder assembles ESC/POS payloads in memory: styled text, dashed
// dividers, QR codes, CODE128 barcodes, and paper cuts. Layouts for
// redemption receipts, vouchers, and diagnostic pages live alongside it
// and produce complete payloads from portal data.
//
// # Service
//
// Service is the entry point for the gateway. Each print operation
// returns a job identifier derived from the submission time, for
// example "receipt_20260823_140506". Printers that are not configured
// reject jobs with ErrPrinterUnavailable; requests naming a printer
// the fleet does not know fail with ErrUnknownPrinter.
package printer
