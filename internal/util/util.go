package util

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LoggingError logs an error before returning it unchanged.
func LoggingError(err error) error {
	logrus.WithError(err).Error()
	return err
}

// LoggingErrorMsg wraps an error with a message, logging the result before
// returning it.
func LoggingErrorMsg(err error, msg string) error {
	logrus.WithError(err).Error(SanitizeLog(msg))
	if err == nil {
		return errors.New(msg)
	}
	return errors.Wrap(err, msg)
}

// LoggingErrorMsgf wraps an error with a formatted message, logging the
// result before returning it.
func LoggingErrorMsgf(err error, msg string, args ...any) error {
	return LoggingErrorMsg(err, fmt.Sprintf(msg, args...))
}

// LoggingNewError creates, logs, and returns a new error from the message.
func LoggingNewError(msg string) error {
	err := errors.New(msg)
	logrus.Error(err)
	return err
}

// LoggingNewErrorf creates, logs, and returns a new formatted error.
func LoggingNewErrorf(msg string, args ...any) error {
	return LoggingNewError(fmt.Sprintf(msg, args...))
}

// SanitizeLog prevents certain classes of injection attacks before logging
// https://codeql.github.com/codeql-query-help/go/go-log-injection/
func SanitizeLog(log string) string {
	escapedLog := strings.ReplaceAll(log, "\n", "")
	return strings.ReplaceAll(escapedLog, "\r", "")
}

// Is2xxResponse returns true if the given status code is a 2xx response
func Is2xxResponse(statusCode int) bool {
	return statusCode/100 == 2
}
