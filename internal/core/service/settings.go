package service

import (
	"context"
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/port"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Keys of the env table. Values stored there override the config file at runtime.
const (
	EnvPrefix          = "PREFIX"
	EnvMode            = "MODE"
	EnvBotName         = "BOT_NAME"
	EnvOwnerName       = "OWNER_NAME"
	EnvOwnerNumber     = "OWNER_NUMBER"
	EnvAutoReadStatus  = "AUTO_READ_STATUS"
	EnvAutoReadCmd     = "AUTO_READ_CMD"
	EnvAutoVoice       = "AUTO_VOICE"
	EnvAutoBio         = "AUTO_BIO"
	EnvAlwaysTyping    = "ALWAYS_TYPING"
	EnvAlwaysRecording = "ALWAYS_RECORDING"
	EnvAntilink        = "ANTILINK"
	EnvAntispam        = "ANTISPAM"
	EnvMaxFileSize     = "MAX_FILESIZE"
)

// SetDefaults registers the default value of every config key read by the bot.
func SetDefaults() {
	viper.SetDefault("bot.log_level", "info")
	viper.SetDefault("bot.prefix", "!")
	viper.SetDefault("bot.mode", string(domain.ModePublic))
	viper.SetDefault("bot.name", "HYPER-MD")
	viper.SetDefault("bot.welcome_image", "https://i.ibb.co/tpJGQkr/20241122-203120.jpg")
	viper.SetDefault("bot.about", "HYPER-MD connected and running ⚡")
	viper.SetDefault("owner.name", "Mr Senesh")
	viper.SetDefault("owner.numbers", []string{"94787351423"})
	viper.SetDefault("owner.react", []string{"👨‍💻", "💗"})
	viper.SetDefault("auto.read_status", true)
	viper.SetDefault("auto.read_cmd", true)
	viper.SetDefault("auto.voice", true)
	viper.SetDefault("auto.voice_url", "")
	viper.SetDefault("auto.voice_ttl", "10m")
	viper.SetDefault("auto.bio", true)
	viper.SetDefault("presence.typing", true)
	viper.SetDefault("presence.recording", false)
	viper.SetDefault("group.antilink", false)
	viper.SetDefault("group.antispam", false)
	viper.SetDefault("group.spam_rate", "5s")
	viper.SetDefault("group.spam_burst", 5)
	viper.SetDefault("limits.max_file_size_mb", 100)
	viper.SetDefault("handler.timeout", "2m")
	viper.SetDefault("transport.send_rate", "250ms")
	viper.SetDefault("transport.send_burst", 3)
	viper.SetDefault("store.path", "hyperbot.db")
	viper.SetDefault("session.path", "session.db")
	viper.SetDefault("downloader.base_url", "https://api.lolhuman.xyz")
	viper.SetDefault("downloader.api_key", "")
	viper.SetDefault("downloader.media_delay", "1s")
	viper.SetDefault("openrouter.model", "openai/gpt-4o-mini")
	viper.SetDefault("chat.context_timeout", "15m")
	viper.SetDefault("chat.system_prompt", "You are a helpful WhatsApp assistant. Answer briefly.")
}

// ConfigSettings builds settings from config file values only.
func ConfigSettings() domain.Settings {
	return domain.Settings{
		Prefix:          viper.GetString("bot.prefix"),
		Mode:            domain.ParseMode(viper.GetString("bot.mode")),
		BotName:         viper.GetString("bot.name"),
		OwnerName:       viper.GetString("owner.name"),
		OwnerNumbers:    viper.GetStringSlice("owner.numbers"),
		OwnerReact:      viper.GetStringSlice("owner.react"),
		AutoReadStatus:  viper.GetBool("auto.read_status"),
		AutoReadCmd:     viper.GetBool("auto.read_cmd"),
		AutoVoice:       viper.GetBool("auto.voice"),
		AutoBio:         viper.GetBool("auto.bio"),
		AlwaysTyping:    viper.GetBool("presence.typing"),
		AlwaysRecording: viper.GetBool("presence.recording"),
		Antilink:        viper.GetBool("group.antilink"),
		Antispam:        viper.GetBool("group.antispam"),
		MaxFileSizeMB:   viper.GetInt("limits.max_file_size_mb"),
	}
}

// EnvValues renders settings in the string form stored in the env table.
func EnvValues(s domain.Settings) map[string]string {
	return map[string]string{
		EnvPrefix:          s.Prefix,
		EnvMode:            string(s.Mode),
		EnvBotName:         s.BotName,
		EnvOwnerName:       s.OwnerName,
		EnvOwnerNumber:     strings.Join(s.OwnerNumbers, ","),
		EnvAutoReadStatus:  strconv.FormatBool(s.AutoReadStatus),
		EnvAutoReadCmd:     strconv.FormatBool(s.AutoReadCmd),
		EnvAutoVoice:       strconv.FormatBool(s.AutoVoice),
		EnvAutoBio:         strconv.FormatBool(s.AutoBio),
		EnvAlwaysTyping:    strconv.FormatBool(s.AlwaysTyping),
		EnvAlwaysRecording: strconv.FormatBool(s.AlwaysRecording),
		EnvAntilink:        strconv.FormatBool(s.Antilink),
		EnvAntispam:        strconv.FormatBool(s.Antispam),
		EnvMaxFileSize:     strconv.Itoa(s.MaxFileSizeMB),
	}
}

// ApplyEnv overlays env table values on s. Booleans are true only for the literal "true"; unknown keys
// and unparsable numbers are ignored.
func ApplyEnv(s domain.Settings, env map[string]string) domain.Settings {
	for key, value := range env {
		switch key {
		case EnvPrefix:
			if value != "" {
				s.Prefix = value
			}
		case EnvMode:
			s.Mode = domain.ParseMode(value)
		case EnvBotName:
			s.BotName = value
		case EnvOwnerName:
			s.OwnerName = value
		case EnvOwnerNumber:
			s.OwnerNumbers = splitNumbers(value)
		case EnvAutoReadStatus:
			s.AutoReadStatus = envBool(value)
		case EnvAutoReadCmd:
			s.AutoReadCmd = envBool(value)
		case EnvAutoVoice:
			s.AutoVoice = envBool(value)
		case EnvAutoBio:
			s.AutoBio = envBool(value)
		case EnvAlwaysTyping:
			s.AlwaysTyping = envBool(value)
		case EnvAlwaysRecording:
			s.AlwaysRecording = envBool(value)
		case EnvAntilink:
			s.Antilink = envBool(value)
		case EnvAntispam:
			s.Antispam = envBool(value)
		case EnvMaxFileSize:
			if n, err := strconv.Atoi(value); err == nil {
				s.MaxFileSizeMB = n
			}
		}
	}

	return s
}

type SettingsProvider struct {
	store port.Store
}

// NewSettingsProvider returns a provider merging the store env table over config values. store may be nil.
func NewSettingsProvider(store port.Store) *SettingsProvider {
	return &SettingsProvider{store: store}
}

// Initialize seeds the env table with the config values when it is still empty.
func (p *SettingsProvider) Initialize(ctx context.Context) {
	if p.store == nil {
		return
	}

	if err := p.store.InitializeEnv(ctx, EnvValues(ConfigSettings())); err != nil {
		log.Warn().Err(err).Msg("failed to initialize env table")
	}
}

// Current returns the effective settings. A failing store yields the config values.
func (p *SettingsProvider) Current(ctx context.Context) domain.Settings {
	settings := ConfigSettings()
	if p.store == nil {
		return settings
	}

	return ApplyEnv(settings, p.store.ReadEnv(ctx))
}

// Update persists one env override.
func (p *SettingsProvider) Update(ctx context.Context, key, value string) error {
	if p.store == nil {
		return domain.ErrStoreUnavailable
	}

	return p.store.UpdateEnv(ctx, key, value)
}

func envBool(value string) bool {
	return strings.TrimSpace(value) == "true"
}

func splitNumbers(value string) []string {
	numbers := make([]string, 0)
	for _, n := range strings.Split(value, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			numbers = append(numbers, n)
		}
	}

	return numbers
}
