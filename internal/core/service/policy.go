package service

import "hyperbot/internal/core/domain"

// Allow is the mode gate: it decides whether a message from the given origin may proceed past the
// pre-gate steps to presence indicators and dispatch.
func Allow(isOwner, isGroup bool, mode domain.Mode) bool {
	if isOwner {
		return true
	}

	switch mode {
	case domain.ModePrivate:
		return false
	case domain.ModeInbox:
		return !isGroup
	case domain.ModeGroups:
		return isGroup
	default:
		return true
	}
}
