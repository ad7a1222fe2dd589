package printer

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCUPSDriverPrintDocument(t *testing.T) {
	t.Parallel()

	var (
		gotStdin []byte
		gotName  string
		gotArgs  []string
	)

	driver := NewCUPSDriver("HP_LaserJet_Pro_MFP", true, nil)
	driver.run = func(_ context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
		gotStdin = stdin
		gotName = name
		gotArgs = args

		return []byte("request id is HP_LaserJet_Pro_MFP-42 (1 file(s))"), nil
	}

	doc := []byte("LSLT PORTAL VOUCHER")
	require.NoError(t, driver.PrintDocument(context.Background(), "", "Voucher WIFI-1", doc))

	assert.Equal(t, "lp", gotName)
	assert.Equal(t, []string{
		"-d", "HP_LaserJet_Pro_MFP",
		"-t", "Voucher WIFI-1",
		"-o", "sides=two-sided-long-edge",
	}, gotArgs)
	assert.Equal(t, doc, gotStdin)
}

func TestCUPSDriverPrintDocumentNamedQueue(t *testing.T) {
	t.Parallel()

	var gotArgs []string

	driver := NewCUPSDriver("Default_Queue", false, nil)
	driver.run = func(_ context.Context, _ []byte, _ string, args ...string) ([]byte, error) {
		gotArgs = args
		return nil, nil
	}

	require.NoError(t, driver.PrintDocument(context.Background(), "Office_Laser", "Test Print", []byte("x")))
	assert.Equal(t, []string{"-d", "Office_Laser", "-t", "Test Print"}, gotArgs)
}

func TestCUPSDriverPrintDocumentError(t *testing.T) {
	t.Parallel()

	driver := NewCUPSDriver("HP_LaserJet_Pro_MFP", true, nil)
	driver.run = func(context.Context, []byte, string, ...string) ([]byte, error) {
		return nil, errors.New("lp: The printer or class does not exist.")
	}

	err := driver.PrintDocument(context.Background(), "", "Report", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to print to HP_LaserJet_Pro_MFP")
}

func TestCUPSDriverPrinters(t *testing.T) {
	t.Parallel()

	var (
		gotName string
		gotArgs []string
	)

	driver := NewCUPSDriver("HP_LaserJet_Pro_MFP", true, nil)
	driver.run = func(_ context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
		assert.Nil(t, stdin)
		gotName = name
		gotArgs = args

		out := "printer HP_LaserJet_Pro_MFP is idle.  enabled since Sat 23 Aug 2026 10:00:00 AM UTC\n" +
			"printer Office_Laser disabled since Sat 23 Aug 2026 09:00:00 AM UTC -\n" +
			"\tpaused\n"

		return []byte(out), nil
	}

	printers, err := driver.Printers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "lpstat", gotName)
	assert.Equal(t, []string{"-p"}, gotArgs)

	require.Len(t, printers, 2)
	assert.Equal(t, "HP_LaserJet_Pro_MFP", printers[0].Name)
	assert.True(t, printers[0].Online)
	assert.Contains(t, printers[0].StateMessage, "is idle")
	assert.Equal(t, "Office_Laser", printers[1].Name)
	assert.False(t, printers[1].Online)
}

func TestParseLpstatIgnoresNoise(t *testing.T) {
	t.Parallel()

	assert.Empty(t, parseLpstat("lpstat: No destinations added.\n"))
	assert.Empty(t, parseLpstat(""))
	assert.Empty(t, parseLpstat("\tenabled since yesterday\n"))
}
