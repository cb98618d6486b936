package domain

import "errors"

var (
	ErrSendingReplyFailed = errors.New("failed to send reply")
	ErrEmptyPrompt        = errors.New("empty prompt")
	ErrCommandNotFound    = errors.New("command not found")
	ErrInvalidDescriptor  = errors.New("invalid command descriptor")
	ErrHandlerPanic       = errors.New("handler panicked")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrFileTooLarge       = errors.New("file exceeds size limit")
	ErrNoQuotedMedia      = errors.New("no quoted media")
	ErrNotConnected       = errors.New("client not connected")
)
