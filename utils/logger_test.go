package utils

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufferedLogger(buf *bytes.Buffer) *Logger {
	return &Logger{
		info:  log.New(buf, "", 0),
		warn:  log.New(buf, "", 0),
		err:   log.New(buf, "", 0),
		debug: log.New(buf, "", 0),
	}
}

func TestDebugSuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferedLogger(&buf)

	l.Debug("noise %d", 1)
	require.Empty(t, buf.String())

	l.SetDebug(true)
	l.Debug("signal %d", 2)
	require.Contains(t, buf.String(), "DEBUG")
	require.Contains(t, buf.String(), "signal 2")
}

func TestInfoAlwaysLogs(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferedLogger(&buf)

	l.Info("scraped %s", "bolton-valley")
	require.Contains(t, buf.String(), "INFO")
	require.Contains(t, buf.String(), "scraped bolton-valley")
}
