package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinterPlainWhenNotTTY(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	assert.False(t, p.tty)

	p.Problem("Contradicting Args", "Please use --output with --csv.")
	p.Finished("Successfully collected 3 Tweets.")
	p.Info("Profile mode")

	assert.Equal(t,
		"[-] Contradicting Args: Please use --output with --csv.\n"+
			"[+] Finished: Successfully collected 3 Tweets.\n"+
			"[*] Profile mode\n",
		buf.String())
}
