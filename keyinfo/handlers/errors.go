package handlers

import (
	"gocloud.dev/gcerrors"

	"github.com/xmlsecgo/keyinfo"
)

func newError(op string, code gcerrors.ErrorCode, message string) *keyinfo.Error {
	return &keyinfo.Error{Op: op, Message: message, Code: code}
}

func wrapError(op string, code gcerrors.ErrorCode, message string, err error) *keyinfo.Error {
	return &keyinfo.Error{Op: op, Message: message, Code: code, Err: err}
}
