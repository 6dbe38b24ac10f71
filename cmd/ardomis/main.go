package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"ardomis/internal/audio"
	"ardomis/internal/chime"
	"ardomis/internal/commands"
	"ardomis/internal/config"
	"ardomis/internal/dialogue"
	"ardomis/internal/emotion"
	"ardomis/internal/ipc"
	"ardomis/internal/memory"
	"ardomis/internal/notify"
	"ardomis/internal/proxy"
	"ardomis/internal/resilience"
	"ardomis/internal/runtime"
	"ardomis/internal/schedule"
	"ardomis/internal/store"
	"ardomis/internal/tts"
	"ardomis/internal/wake"
	"ardomis/pkg/protocol"
	"ardomis/pkg/stt"
)

const (
	shard         = "ARDOMIS"
	historyWindow = 24
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", filepath.Join(config.DefaultBaseDir(), "ardomis.env"), "Env file path")
	logLevel := cli.StringP("log", "l", "", "Log level (overrides LOG_LEVEL)")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address for outbound API calls")
	dbPath := cli.String("db", "", "Database path (overrides MEMORY_DB_PATH)")
	cli.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("Failed to load env file", "path", *envFile, "err", err)
	}

	cfg := config.Load()
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevelMap[cfg.LogLevel],
		TimeFormat: time.Kitchen,
	})))

	log.Info("Booting up")

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.Warn("Sentry disabled", "err", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *proxyAddr); err != nil {
		log.Error("Stopped", "err", err)
		os.Exit(1)
	}
	log.Info("Shut down")
}

func run(ctx context.Context, cfg *config.Config, proxyAddr string) error {
	httpClient, err := proxy.NewClient(proxyAddr)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return err
	}
	db, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return err
	}
	sched := schedule.New(db, loc)

	history, err := memory.Open(ctx, db, historyWindow, cfg.MemoryMaxRows)
	if err != nil {
		return err
	}

	moodStore := emotion.NewStore(cfg.StatePath)
	mood := moodStore.Load()

	log.Debug("Loaded store", "db", cfg.DBPath, "history", len(history.Messages()))

	mic, err := audio.OpenMicrophone(cfg.MicKeywords, cfg.SampleRate, chunkSamples(cfg))
	if err != nil {
		if errors.Is(err, audio.ErrNoInputDevice) {
			log.Error("No microphone found", "keywords", cfg.MicKeywords)
		}
		return err
	}
	defer mic.Close()

	segmenter := audio.NewSegmenter(mic, audio.SegmenterConfig{
		SampleRate:     cfg.SampleRate,
		Chunk:          cfg.ChunkDuration,
		PreRoll:        cfg.PreRoll,
		SilenceToStop:  cfg.SilenceToStop,
		MaxRecord:      cfg.MaxRecord,
		StartThreshold: cfg.StartThreshold,
		StopThreshold:  cfg.StopThreshold,
	})

	transcriber, closeSTT, err := newTranscriber(cfg, httpClient)
	if err != nil {
		return err
	}
	defer closeSTT()

	client, err := newDialogueClient(ctx, cfg, httpClient)
	if err != nil {
		return err
	}
	responder := dialogue.NewResponder(client, resilience.DefaultRetryConfig(), nil)

	player := audio.NewPlayer()
	mixer := audio.NewMixer([]string{"ardomis"})

	voice, err := newSpeaker(cfg, httpClient, player)
	if err != nil {
		return err
	}
	speaker := tts.Ducked{Speaker: voice, Mixer: mixer}

	persona := dialogue.DefaultPersona
	ctrl := runtime.New(runtime.Deps{
		Listener:  segmenter,
		STT:       transcriber,
		Speaker:   speaker,
		Effects:   notify.New(cfg.SFXDir, player),
		Dialogue:  responder,
		Commands:  commands.NewDispatcher(sched, mixer, loc),
		Schedule:  sched,
		History:   history,
		Mood:      mood,
		MoodStore: moodStore,
		Planner:   chime.NewPlanner(cfg.ChimeMin, cfg.ChimeMax, nil),
		Chime: dialogue.ChimeWriter{
			Responder: responder,
			System:    func() string { return persona.SystemPrompt(*mood) },
			History:   history.Messages,
		},
		Wake: wake.NewMatcher(wake.Options{
			Words:       cfg.WakeWords,
			MaxDistance: cfg.WakeMaxDistance,
			MinTokenLen: cfg.WakeMinTokenLen,
			MaxLenGap:   cfg.WakeMaxLenGap,
		}),
		Persona: persona,
	}, runtime.Options{
		Cooldown:        cfg.Cooldown,
		DedupeWindow:    cfg.DedupeWindow,
		ChatIdleTimeout: cfg.ChatIdleTimeout,
		ResponseWindow:  cfg.ResponseWindow,
		PresencePoll:    cfg.PresencePoll,
		ServiceTimeout:  cfg.ServiceTimeout,
	})

	if cfg.BusURL != "" {
		bus, err := protocol.Dial(ctx, protocol.BusConfig{
			Shard:  shard,
			URL:    cfg.BusURL,
			Handle: busHandler(ctrl),
		})
		if err != nil {
			log.Warn("Bus unavailable, running without it", "url", cfg.BusURL, "err", err)
		} else {
			defer bus.Close()
			go bus.Run(ctx)
			ctrl.Publisher = bus
		}
	}

	if err := ipc.Serve(ctx, cfg.ControlSocket, func(msg ipc.ControlMessage) {
		ctrl.Notify(msg.Cmd)
	}); err != nil {
		return err
	}

	log.Info("Boot up - successful", "name", persona.Name, "formal", persona.Formal, "mic", mic.Device)

	return ctrl.Run(ctx)
}

func chunkSamples(cfg *config.Config) int {
	return max(1, int(int64(cfg.SampleRate)*int64(cfg.ChunkDuration)/int64(time.Second)))
}

// busHandler forwards control verbs addressed to us (ARDOMIS:WAKE:NOW:<from>)
// into the loop inbox.
func busHandler(ctrl *runtime.Controller) func(*protocol.Message) {
	return func(m *protocol.Message) {
		cmd := strings.ToLower(m.Verb)
		if !ipc.Valid(cmd) {
			log.Debug("Ignoring bus frame", "frame", m.String())
			return
		}
		log.Info("Bus command", "cmd", cmd, "from", m.From)
		ctrl.Notify(cmd)
	}
}

func newTranscriber(cfg *config.Config, hc *http.Client) (stt.Transcriber, func(), error) {
	switch cfg.STTBackend {
	case "whisper":
		w, err := stt.NewWhisper(cfg.WhisperModelPath, stt.Options{Language: "en"})
		if err != nil {
			return nil, nil, err
		}
		log.Debug("Loaded whisper", "model", cfg.WhisperModelPath)
		return w, func() { w.Close() }, nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, nil, errors.New("OPENAI_API_KEY not set")
		}
		client := openai.NewClient(
			option.WithAPIKey(cfg.OpenAIAPIKey),
			option.WithHTTPClient(hc),
			option.WithMaxRetries(0),
		)
		return stt.NewOpenAI(client, cfg.OpenAISTTModel), func() {}, nil
	default:
		return nil, nil, errors.New("unknown STT_BACKEND " + cfg.STTBackend)
	}
}

func newDialogueClient(ctx context.Context, cfg *config.Config, hc *http.Client) (dialogue.Client, error) {
	switch cfg.DialogueBackend {
	case "gemini":
		g, err := dialogue.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, hc, cfg.DeepSeekTokensFast, cfg.DeepSeekTokensDeep)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "openai":
		if cfg.DeepSeekAPIKey == "" {
			return nil, errors.New("DEEPSEEK_API_KEY not set")
		}
		client := openai.NewClient(
			option.WithAPIKey(cfg.DeepSeekAPIKey),
			option.WithBaseURL(cfg.DeepSeekBaseURL),
			option.WithHTTPClient(hc),
			option.WithMaxRetries(0),
		)
		return dialogue.NewChat(client, dialogue.ChatOptions{
			FastModel:  cfg.DeepSeekModelFast,
			DeepModel:  cfg.DeepSeekModelDeep,
			FastTokens: cfg.DeepSeekTokensFast,
			DeepTokens: cfg.DeepSeekTokensDeep,
		}), nil
	default:
		return nil, errors.New("unknown DIALOGUE_BACKEND " + cfg.DialogueBackend)
	}
}

func newSpeaker(cfg *config.Config, hc *http.Client, player *audio.Player) (tts.Speaker, error) {
	switch cfg.TTSBackend {
	case "espeak":
		return tts.NewEspeak("en")
	case "elevenlabs":
		el := tts.NewElevenLabs(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, cfg.ElevenLabsModelID, hc, player)
		el.Lead = cfg.PreSpeechSilence
		return el, nil
	default:
		return nil, errors.New("unknown TTS_BACKEND " + cfg.TTSBackend)
	}
}
