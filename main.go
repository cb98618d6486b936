package main

import (
	"context"
	"hyperbot/internal/adapters/converter"
	"hyperbot/internal/adapters/downloader"
	"hyperbot/internal/adapters/generator"
	"hyperbot/internal/adapters/handler"
	"hyperbot/internal/adapters/sender"
	"hyperbot/internal/adapters/store"
	"hyperbot/internal/core/domain/command"
	"hyperbot/internal/core/domain/commands"
	"hyperbot/internal/core/port"
	"hyperbot/internal/core/service"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mdp/qrterminal/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	started := time.Now()
	log.Info().Msg("starting hyperbot...")

	if err := godotenv.Load("config.env"); err != nil {
		log.Debug().Err(err).Msg("no config.env loaded")
	}

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	service.SetDefaults()

	log.Info().Msg("reading config file...")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatal().Err(err).Msg("could not read config file")
		}
		log.Warn().Msg("no config file found, running on defaults and environment")
	}

	var logLevel zerolog.Level

	switch viper.GetString("bot.log_level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	handlerTimeout := duration("handler.timeout")

	defaults := store.Defaults{
		OwnerNumbers: viper.GetStringSlice("owner.numbers"),
		Antilink:     viper.GetBool("group.antilink"),
		Antispam:     viper.GetBool("group.antispam"),
	}

	db, err := store.NewSQLite(viper.GetString("store.path"), defaults)
	if err != nil {
		log.Error().Err(err).Msg("failed opening database, running with defaults only")
		db = store.NewOffline(defaults)
	}
	defer db.Close()

	settings := service.NewSettingsProvider(db)
	settings.Initialize(ctx)
	db.UseSettings(settings)

	waLogger := waLog.Zerolog(log.Logger.With().Str("module", "whatsmeow").Logger())
	container, err := sqlstore.New(ctx, "sqlite3",
		"file:"+viper.GetString("session.path")+"?_foreign_keys=on", waLogger.Sub("Database"))
	if err != nil {
		log.Panic().Err(err).Msg("failed opening session store")
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		log.Panic().Err(err).Msg("failed loading device")
	}

	client := whatsmeow.NewClient(device, waLogger.Sub("Client"))
	conn := sender.NewWhatsApp(client, sender.Options{
		SendRate:    duration("transport.send_rate"),
		SendBurst:   viper.GetInt("transport.send_burst"),
		MaxFileSize: func(ctx context.Context) int64 {
			return int64(settings.Current(ctx).MaxFileSizeMB) << 20
		},
	})

	var textGenerator port.TextGenerator
	if apiKey := viper.GetString("openrouter.api_key"); apiKey != "" {
		textGenerator = generator.NewOpenRouter(apiKey, viper.GetString("chat.system_prompt"))
	} else {
		log.Warn().Msg("no openrouter api key configured, ai command disabled")
	}

	var stickerConverter port.StickerConverter
	if magick, err := converter.NewMagick(); err == nil {
		stickerConverter = magick
	} else {
		log.Warn().Err(err).Msg("imagemagick not found, sticker command disabled")
	}

	registry := command.NewRegistry()
	registered := commands.Register(registry, commands.Deps{
		Resolver: downloader.NewLolHuman(viper.GetString("downloader.base_url"),
			viper.GetString("downloader.api_key")),
		Generator:    textGenerator,
		Converter:    stickerConverter,
		Store:        db,
		Settings:     settings,
		Tracker:      service.NewSpamTracker(ctx),
		BotName:      viper.GetString("bot.name"),
		Model:        viper.GetString("openrouter.model"),
		MediaDelay:   duration("downloader.media_delay"),
		ChatDuration: duration("chat.context_timeout"),
		Started:      started,
	})
	log.Info().Int("commands", registered).Strs("names", registry.ListCommands()).Msg("plugins installed")

	voices := service.NewVoiceMatcher(downloader.NewVoiceCatalog(viper.GetString("auto.voice_url"),
		duration("auto.voice_ttl")))

	pipeline := handler.NewMessage(conn, service.NewDispatcher(registry, handlerTimeout), settings, db, voices,
		handler.Options{
			WelcomeImage: viper.GetString("bot.welcome_image"),
			About:        viper.GetString("bot.about"),
		})
	client.AddEventHandler(pipeline.EventHandler(ctx))

	if err := connect(ctx, client); err != nil {
		log.Panic().Err(err).Msg("failed connecting to WhatsApp")
	}

	log.Info().Msg("bot listening")
	<-ctx.Done()

	log.Info().Msg("shutting down...")
	client.Disconnect()
	pipeline.Wait()
}

// connect pairs a new device through a terminal QR code, or resumes the stored session.
func connect(ctx context.Context, client *whatsmeow.Client) error {
	if client.Store.ID != nil {
		return client.Connect()
	}

	qrChan, err := client.GetQRChannel(ctx)
	if err != nil {
		return err
	}

	if err := client.Connect(); err != nil {
		return err
	}

	for evt := range qrChan {
		switch evt.Event {
		case "code":
			log.Info().Msg("scan the QR code below to pair")
			qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
		case "success":
			log.Info().Msg("pairing successful")
		default:
			log.Info().Str("event", evt.Event).Msg("pairing event")
		}
	}

	return nil
}

func duration(key string) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		log.Panic().Err(err).Str("key", key).Msg("invalid duration in config")
	}

	return d
}
