package printer

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg" // decoders for portal-supplied QR images
	_ "image/png"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	labelWidth       = 32
	testDividerWidth = 32

	jobIDLayout        = "20060102_150405"
	redeemedLayout     = "2006-01-02 15:04"
	testTimeLayout     = "2006-01-02 15:04:05"
	isoTimestampLayout = "2006-01-02T15:04:05.999999"
)

// receiptQR is the verification payload embedded in redemption
// receipts.
type receiptQR struct {
	Type        string `json:"type"`
	VoucherCode string `json:"voucher_code"`
	Timestamp   string `json:"timestamp"`
	SiteID      any    `json:"site_id"`
}

// voucherQR is the scan payload printed on vouchers that carry no
// pre-rendered QR image.
type voucherQR struct {
	Code    string `json:"code"`
	Type    string `json:"type"`
	Expires string `json:"expires"`
}

// buildReceipt renders a redemption receipt payload.
func buildReceipt(width int, voucher, customer, staff, site map[string]any, now time.Time) ([]byte, error) {
	b := NewBuilder(width)

	b.Style(Style{Align: AlignCenter, Font: FontA, Bold: true, DoubleHeight: true})
	b.Line(toString(site["name"]))

	b.Style(Style{Align: AlignCenter, Font: FontB})
	b.Line(toString(site["location"]))
	b.Divider(0)

	b.Style(Style{Align: AlignCenter, Font: FontA, Bold: true})
	b.Line("VOUCHER REDEMPTION")
	b.Divider(0)

	b.Style(Style{Align: AlignLeft, Font: FontA})
	b.Linef("Code: %s", toString(voucher["code"]))
	b.Linef("Type: %s", toString(voucher["title"]))
	b.Linef("Value: $%.2f", amount(voucher["value"]))
	b.Linef("Redeemed: %s", now.Format(redeemedLayout))

	if len(customer) > 0 {
		b.Linef("Customer: %s", toString(customer["name"]))
		b.Linef("Tier: %s", toString(customer["loyalty_tier"]))
	}

	b.Linef("Staff: %s", toString(staff["name"]))
	b.Divider(0)

	if toString(voucher["qr_code"]) != "" {
		payload, err := json.Marshal(receiptQR{
			Type:        "redemption_receipt",
			VoucherCode: toString(voucher["code"]),
			Timestamp:   now.Format(isoTimestampLayout),
			SiteID:      site["id"],
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to build receipt qr payload")
		}

		b.Style(Style{Align: AlignCenter})
		if err := b.QRCode(string(payload)); err != nil {
			return nil, err
		}
	}

	b.Line("")
	b.Style(Style{Align: AlignCenter, Font: FontB})
	b.Line("Thank you for your visit!")
	b.Line("Visit us again soon.")
	b.Line("")
	b.Cut()

	return b.Bytes(), nil
}

// buildVoucherThermal renders a voucher for receipt stock.
func buildVoucherThermal(width int, voucher map[string]any) ([]byte, error) {
	b := NewBuilder(width)

	b.Style(Style{Align: AlignCenter, Font: FontA, Bold: true, DoubleHeight: true})
	b.Line("VOUCHER")

	b.Style(Style{Align: AlignCenter, Font: FontB})
	b.Divider(0)

	b.Style(Style{Align: AlignCenter, Font: FontA, Bold: true})
	b.Line(toString(voucher["title"]))
	b.Line("")

	b.Style(Style{Align: AlignLeft, Font: FontA})
	b.Linef("Code: %s", toString(voucher["code"]))

	if desc := toString(voucher["description"]); desc != "" {
		b.Linef("Description: %s", desc)
	}

	if value := amount(voucher["value"]); value != 0 {
		b.Linef("Value: $%.2f", value)
	}

	b.Linef("Expires: %s", shortDate(toString(voucher["expires_at"])))
	b.Divider(0)

	if qrValue := toString(voucher["qr_code"]); qrValue != "" {
		b.Style(Style{Align: AlignCenter})

		if strings.HasPrefix(qrValue, "data:image") {
			img, err := decodeDataImage(qrValue)
			if err != nil {
				return nil, err
			}

			b.Image(img)
		} else {
			payload, err := json.Marshal(voucherQR{
				Code:    toString(voucher["code"]),
				Type:    toString(voucher["type"]),
				Expires: toString(voucher["expires_at"]),
			})
			if err != nil {
				return nil, errors.Wrap(err, "failed to build voucher qr payload")
			}

			if err := b.QRCode(string(payload)); err != nil {
				return nil, err
			}
		}
	}

	if toString(voucher["barcode"]) != "" {
		b.Style(Style{Align: AlignCenter})
		if err := b.Barcode128(toString(voucher["code"])); err != nil {
			return nil, err
		}
	}

	b.Line("")
	b.Style(Style{Align: AlignCenter, Font: FontB})
	b.Line("Present this voucher to redeem")
	b.Line("Terms and conditions apply")
	b.Line("")
	b.Cut()

	return b.Bytes(), nil
}

// buildVoucherLabel renders a compact voucher for 62mm label stock.
func buildVoucherLabel(voucher map[string]any) ([]byte, error) {
	b := NewBuilder(labelWidth)

	b.Style(Style{Align: AlignCenter, Font: FontA, Bold: true, DoubleHeight: true})
	b.Line(toString(voucher["title"]))
	b.Divider(0)

	b.Style(Style{Align: AlignLeft, Font: FontA})
	b.Linef("Code: %s", toString(voucher["code"]))
	b.Linef("Expires: %s", shortDate(toString(voucher["expires_at"])))

	b.Style(Style{Align: AlignCenter})
	if err := b.Barcode128(toString(voucher["code"])); err != nil {
		return nil, err
	}

	b.Cut()

	return b.Bytes(), nil
}

// buildTestPage renders the diagnostic page sent by printer tests.
func buildTestPage(width int, printerID string, now time.Time) []byte {
	b := NewBuilder(width)

	b.Style(Style{Align: AlignCenter, Font: FontA, Bold: true})
	b.Line("PRINTER TEST")
	b.Divider(testDividerWidth)

	b.Style(Style{Align: AlignLeft, Font: FontA})
	b.Linef("Printer ID: %s", printerID)
	b.Linef("Test Time: %s", now.Format(testTimeLayout))
	b.Line("Test successful!")
	b.Line("")
	b.Cut()

	return b.Bytes()
}

// renderTestDocument lays out the diagnostic page sent to CUPS queues.
func renderTestDocument(printerName string, now time.Time) []byte {
	var sb strings.Builder

	sb.WriteString("PRINTER TEST\n\n")
	fmt.Fprintf(&sb, "Printer: %s\n", printerName)
	fmt.Fprintf(&sb, "Test Time: %s\n\n", now.Format(testTimeLayout))
	sb.WriteString("Test completed successfully!\n")

	return []byte(sb.String())
}

// renderVoucherDocument lays out an A4 voucher as plain text for the
// CUPS queue.
func renderVoucherDocument(voucher map[string]any, now time.Time) []byte {
	var sb strings.Builder

	sb.WriteString("LSLT PORTAL VOUCHER\n")
	sb.WriteString(strings.Repeat("=", 40) + "\n\n")

	fmt.Fprintf(&sb, "Title:   %s\n", toString(voucher["title"]))
	fmt.Fprintf(&sb, "Code:    %s\n", toString(voucher["code"]))

	if vtype := toString(voucher["type"]); vtype != "" {
		fmt.Fprintf(&sb, "Type:    %s\n", vtype)
	}

	if value := amount(voucher["value"]); value != 0 {
		fmt.Fprintf(&sb, "Value:   $%.2f\n", value)
	}

	if desc := toString(voucher["description"]); desc != "" {
		fmt.Fprintf(&sb, "\n%s\n", desc)
	}

	fmt.Fprintf(&sb, "\nExpires: %s\n", shortDate(toString(voucher["expires_at"])))
	fmt.Fprintf(&sb, "Printed: %s\n", now.Format(testTimeLayout))

	sb.WriteString("\nPresent this voucher to redeem. Terms and conditions apply.\n")

	return []byte(sb.String())
}

// renderReportDocument lays out a report as plain text. Scalar fields
// print as labelled lines, nested values as indented JSON.
func renderReportDocument(report map[string]any, now time.Time) []byte {
	title := toString(report["title"])
	if title == "" {
		title = "LSLT Portal Report"
	}

	var sb strings.Builder

	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", now.Format(testTimeLayout))

	keys := make([]string, 0, len(report))
	for k := range report {
		if k == "title" {
			continue
		}

		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := report[k].(type) {
		case map[string]any, []any:
			encoded, err := json.MarshalIndent(v, "  ", "  ")
			if err != nil {
				continue
			}

			fmt.Fprintf(&sb, "%s:\n  %s\n", k, encoded)
		default:
			fmt.Fprintf(&sb, "%s: %v\n", k, v)
		}
	}

	return []byte(sb.String())
}

// decodeDataImage decodes a data: URI into an image.
func decodeDataImage(uri string) (image.Image, error) {
	_, encoded, found := strings.Cut(uri, ",")
	if !found {
		return nil, errors.New("malformed image data uri")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "qr code image is not valid base64")
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode qr code image")
	}

	return img, nil
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}

// amount coerces JSON numbers to a dollar value.
func amount(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}

		return f
	default:
		return 0
	}
}

// shortDate keeps the date part of an ISO timestamp.
func shortDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}

	return s
}
