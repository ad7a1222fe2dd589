package printer

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/cockroachdb/errors"
)

// ESC/POS control bytes.
const (
	esc = 0x1B
	gs  = 0x1D
)

const (
	defaultReceiptWidth = 48

	// qrModuleSize scales QR modules to printable dots, four dots per
	// module.
	qrModuleSize = 4

	barcodeHeight = 50
	barcodeWidth  = 2
)

// Align selects horizontal alignment for subsequent output.
type Align byte

const (
	AlignLeft   Align = 0
	AlignCenter Align = 1
	AlignRight  Align = 2
)

// Font selects one of the printer's built-in character fonts.
type Font byte

const (
	FontA Font = 0
	FontB Font = 1
)

// Style is one ESC/POS mode change: alignment, font, emphasis, and
// character height set together. Zero values reset each attribute.
type Style struct {
	Align        Align
	Font         Font
	Bold         bool
	DoubleHeight bool
}

// Builder assembles an ESC/POS payload in memory. The zero value is not
// usable; call NewBuilder.
type Builder struct {
	width int
	buf   bytes.Buffer
}

// NewBuilder starts a payload with a printer reset. Width is the line
// width in characters and defaults to 48.
func NewBuilder(width int) *Builder {
	if width <= 0 {
		width = defaultReceiptWidth
	}

	b := &Builder{width: width}
	b.buf.Write([]byte{esc, '@'})

	return b
}

// Width returns the line width in characters.
func (b *Builder) Width() int { return b.width }

// Style switches alignment, font, emphasis, and character height.
func (b *Builder) Style(style Style) {
	b.buf.Write([]byte{esc, 'a', byte(style.Align)})
	b.buf.Write([]byte{esc, 'M', byte(style.Font)})

	bold := byte(0)
	if style.Bold {
		bold = 1
	}
	b.buf.Write([]byte{esc, 'E', bold})

	size := byte(0)
	if style.DoubleHeight {
		size = 0x01
	}
	b.buf.Write([]byte{gs, '!', size})
}

// Text appends raw text without a trailing newline.
func (b *Builder) Text(s string) {
	b.buf.WriteString(s)
}

// Line appends a line of text.
func (b *Builder) Line(s string) {
	b.buf.WriteString(s)
	b.buf.WriteByte('\n')
}

// Linef appends a formatted line.
func (b *Builder) Linef(format string, args ...any) {
	b.Line(fmt.Sprintf(format, args...))
}

// Divider appends a dashed rule. A non-positive count uses the full
// line width.
func (b *Builder) Divider(count int) {
	if count <= 0 {
		count = b.width
	}

	b.Line(strings.Repeat("-", count))
}

// Feed advances the paper by the given number of lines.
func (b *Builder) Feed(lines int) {
	if lines <= 0 {
		return
	}

	b.buf.Write([]byte{esc, 'd', byte(lines)})
}

// Image appends a raster image. Pixels darker than mid grey print
// black.
func (b *Builder) Image(img image.Image) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return
	}

	bytesPerRow := (width + 7) / 8
	data := make([]byte, bytesPerRow*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, bl, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			luma := (299*r + 587*g + 114*bl) / 1000
			if luma < 0x8000 {
				data[y*bytesPerRow+x/8] |= 0x80 >> uint(x%8)
			}
		}
	}

	b.buf.Write([]byte{
		gs, 'v', '0', 0,
		byte(bytesPerRow), byte(bytesPerRow >> 8),
		byte(height), byte(height >> 8),
	})
	b.buf.Write(data)
}

// QRCode encodes content as a QR code and appends it as a raster
// image.
func (b *Builder) QRCode(content string) error {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return errors.Wrap(err, "failed to encode qr code")
	}

	bounds := code.Bounds()

	scaled, err := barcode.Scale(code, bounds.Dx()*qrModuleSize, bounds.Dy()*qrModuleSize)
	if err != nil {
		return errors.Wrap(err, "failed to scale qr code")
	}

	b.Image(scaled)

	return nil
}

// Barcode128 appends a CODE128 barcode with the human readable text
// printed below it. The payload length must fit the command's single
// length byte.
func (b *Builder) Barcode128(content string) error {
	if content == "" {
		return nil
	}

	// Code set B covers the portal's voucher codes.
	payload := "{B" + content
	if len(payload) > 255 {
		return errors.Newf("barcode content too long: %d bytes", len(content))
	}

	b.buf.Write([]byte{gs, 'h', barcodeHeight})
	b.buf.Write([]byte{gs, 'w', barcodeWidth})
	b.buf.Write([]byte{gs, 'H', 2})
	b.buf.Write([]byte{gs, 'f', 0})
	b.buf.Write([]byte{gs, 'k', 73, byte(len(payload))})
	b.buf.WriteString(payload)

	return nil
}

// Cut feeds past the print head and cuts the paper.
func (b *Builder) Cut() {
	b.Feed(4)
	b.buf.Write([]byte{gs, 'V', 66, 0})
}

// Bytes returns the assembled payload.
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}
