package util

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestLoggingError(t *testing.T) {
	err := errors.New("storage unavailable")
	assert.Same(t, err, LoggingError(err))
}

func TestLoggingErrorMsg(t *testing.T) {
	err := LoggingErrorMsg(errors.New("bad handshake"), "could not reach daemon")
	assert.EqualError(t, err, "could not reach daemon: bad handshake")

	err = LoggingErrorMsg(nil, "missing challenge")
	assert.EqualError(t, err, "missing challenge")
}

func TestSanitizeLog(t *testing.T) {
	assert.Equal(t, "a b", SanitizeLog("a\r\n b"))
}

func TestIs2xxResponse(t *testing.T) {
	assert.True(t, Is2xxResponse(http.StatusOK))
	assert.True(t, Is2xxResponse(http.StatusNoContent))
	assert.False(t, Is2xxResponse(http.StatusFound))
	assert.False(t, Is2xxResponse(http.StatusInternalServerError))
}
