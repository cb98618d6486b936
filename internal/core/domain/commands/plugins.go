package commands

import (
	"context"
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/domain/command"
	"hyperbot/internal/core/port"
	"hyperbot/internal/core/service"
	"time"
)

// Deps are the collaborators of the bundled plugins. A nil Generator skips the ai command,
// a nil Converter the sticker command.
type Deps struct {
	Resolver     port.MediaResolver
	Generator    port.TextGenerator
	Converter    port.StickerConverter
	Store        port.Store
	Settings     SettingsWriter
	Tracker      service.Tracker
	BotName      string
	Model        string
	MediaDelay   time.Duration
	ChatDuration time.Duration
	Started      time.Time
}

// Register adds every bundled plugin to registry and returns how many registrations succeeded.
func Register(registry *command.Registry, deps Deps) int {
	downloader := NewDownloader(deps.Resolver, deps.MediaDelay)

	descriptors := []command.Descriptor{
		command.NewCommand("tiktok", port.HandlerFunc(downloader.TikTok),
			command.WithAliases("tt", "tik"),
			command.WithReaction("🎵"),
			command.WithMeta("Download TikTok videos", "tiktok [url]", "downloader")),
		command.NewCommand("ytmp4", port.HandlerFunc(downloader.YouTubeVideo),
			command.WithAliases("yt", "ytvideo"),
			command.WithReaction("📹"),
			command.WithMeta("Download YouTube videos", "ytmp4 [url/search]", "downloader")),
		command.NewCommand("ytmp3", port.HandlerFunc(downloader.YouTubeAudio),
			command.WithAliases("yta", "ytaudio"),
			command.WithReaction("🎵"),
			command.WithMeta("Download YouTube videos as audio", "ytmp3 [url/search]", "downloader")),
		command.NewCommand("instagram", port.HandlerFunc(downloader.Instagram),
			command.WithAliases("ig", "igdl"),
			command.WithReaction("📷"),
			command.WithMeta("Download Instagram posts/reels/stories", "instagram [url]", "downloader")),
		command.NewCommand("facebook", port.HandlerFunc(downloader.Facebook),
			command.WithAliases("fb", "fbdl"),
			command.WithReaction("📹"),
			command.WithMeta("Download Facebook videos", "facebook [url]", "downloader")),
		command.NewCommand("twitter", port.HandlerFunc(downloader.Twitter),
			command.WithAliases("tw", "x"),
			command.WithReaction("🐦"),
			command.WithMeta("Download Twitter/X posts", "twitter [url]", "downloader")),
		command.NewCommand("plugin:downloader", port.HandlerFunc(noop),
			command.WithMeta("Social media downloaders plugin", "", pluginCategory)),

		command.NewCommand("ping", NewPing(),
			command.WithMeta("Check the bot latency", "ping", "general")),
		command.NewCommand("menu", NewMenu(registry, deps.BotName),
			command.WithAliases("help"),
			command.WithMeta("List all commands", "menu", "general")),
		command.NewCommand("system", NewSystem(deps.Started),
			command.WithAliases("runtime"),
			command.WithMeta("Show runtime statistics", "system", "general")),

		command.NewCommand("mode", NewMode(deps.Settings),
			command.WithMeta("Change who may use the bot", "mode <public|private|inbox|groups>", "owner")),
		command.NewCommand("ban", NewBan(deps.Store),
			command.WithMeta("Ignore all commands of a user", "ban @user [reason]", "owner")),
		command.NewCommand("unban", NewUnban(deps.Store),
			command.WithMeta("Lift a ban", "unban @user", "owner")),
		command.NewCommand("resetwarn", NewResetWarn(deps.Store),
			command.WithAliases("delwarn"),
			command.WithMeta("Clear the warnings of a user", "resetwarn @user", "group")),
		command.NewCommand("antilink", NewGroupToggle(deps.Store, FlagAntilink),
			command.WithMeta("Delete group invite links", "antilink on|off", "group")),
		command.NewCommand("antispam", NewGroupToggle(deps.Store, FlagAntispam),
			command.WithMeta("Warn users sending too fast", "antispam on|off", "group")),

		command.NewListener(domain.TriggerBody, NewAntilink(deps.Store), command.WithName("antilink-guard")),
		command.NewListener(domain.TriggerBody, NewAntispam(deps.Store, deps.Tracker),
			command.WithName("antispam-guard")),
		command.NewListener(domain.TriggerText, NewStatusSaver(), command.WithName("statussaver")),
	}

	if deps.Generator != nil {
		descriptors = append(descriptors, command.NewCommand("ai", NewAI(deps.Generator, deps.Model,
			deps.ChatDuration),
			command.WithAliases("gpt"),
			command.WithMeta("Ask the AI assistant", "ai [prompt]", "general")))
	}

	if deps.Converter != nil {
		descriptors = append(descriptors, command.NewCommand("sticker", NewSticker(deps.Converter),
			command.WithAliases("s", "stiker"),
			command.WithReaction("🎨"),
			command.WithMeta("Turn an image into a sticker", "sticker (reply to an image)", "general")))
	}

	registered := 0
	for _, d := range descriptors {
		if _, ok := registry.Register(d); ok {
			registered++
		}
	}

	return registered
}

func noop(context.Context, port.Transport, *domain.Message, *domain.DispatchContext) error {
	return nil
}
