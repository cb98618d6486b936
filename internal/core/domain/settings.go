package domain

import "slices"

// Settings is the effective bot configuration for one message, config file
// values with store overrides merged on top.
type Settings struct {
	Prefix       string
	Mode         Mode
	BotName      string
	OwnerName    string
	OwnerNumbers []string
	OwnerReact   []string

	AutoReadStatus  bool
	AutoReadCmd     bool
	AutoVoice       bool
	AutoBio         bool
	AlwaysTyping    bool
	AlwaysRecording bool

	Antilink bool
	Antispam bool

	MaxFileSizeMB int
}

func (s Settings) IsOwnerNumber(number string) bool {
	if number == "" {
		return false
	}

	return slices.Contains(s.OwnerNumbers, number)
}
