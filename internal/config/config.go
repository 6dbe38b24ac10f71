// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"ardomis/internal/ipc"
)

type Config struct {
	BaseDir string

	// Timing
	Cooldown         time.Duration
	DedupeWindow     time.Duration
	ChatIdleTimeout  time.Duration
	ResponseWindow   time.Duration
	ChimeMin         time.Duration
	ChimeMax         time.Duration
	PresencePoll     time.Duration
	PreSpeechSilence time.Duration
	ServiceTimeout   time.Duration

	// Segmenter
	SampleRate     int
	ChunkDuration  time.Duration
	StartThreshold float64
	StopThreshold  float64
	MaxRecord      time.Duration
	PreRoll        time.Duration
	SilenceToStop  time.Duration
	MicKeywords    []string

	// Wake matcher
	WakeWords       []string
	WakeMaxDistance int
	WakeMinTokenLen int
	WakeMaxLenGap   int

	// Store
	DBPath        string
	MemoryMaxRows int
	StatePath     string
	Timezone      string

	// Services
	STTBackend       string
	OpenAIAPIKey     string
	OpenAISTTModel   string
	WhisperModelPath string

	DialogueBackend    string
	DeepSeekAPIKey     string
	DeepSeekBaseURL    string
	DeepSeekModelFast  string
	DeepSeekModelDeep  string
	DeepSeekTokensFast int
	DeepSeekTokensDeep int
	GeminiAPIKey       string
	GeminiModel        string

	TTSBackend        string
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsModelID string

	SFXDir        string
	BusURL        string
	ControlSocket string
	SentryDSN     string
	LogLevel      string
}

// DefaultBaseDir is where state, the database and the env file live.
func DefaultBaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "ardomis")
}

func Load() *Config {
	base := getEnv("ARDOMIS_HOME", DefaultBaseDir())

	return &Config{
		BaseDir: base,

		Cooldown:         getEnvDuration("POST_TTS_COOLDOWN", 100*time.Millisecond),
		DedupeWindow:     getEnvDuration("DEDUPE_WINDOW", 6*time.Second),
		ChatIdleTimeout:  getEnvDuration("CHAT_IDLE_TIMEOUT", 12*time.Second),
		ResponseWindow:   getEnvSeconds("PRESENCE_RESPONSE_WINDOW_SEC", 20),
		ChimeMin:         getEnvSeconds("PRESENCE_CHIME_MIN_SEC", 300),
		ChimeMax:         getEnvSeconds("PRESENCE_CHIME_MAX_SEC", 900),
		PresencePoll:     getEnvSeconds("PRESENCE_LISTEN_POLL_SEC", 2.0),
		PreSpeechSilence: getEnvDuration("PRE_SPEECH_SILENCE", 100*time.Millisecond),
		ServiceTimeout:   getEnvDuration("SERVICE_TIMEOUT", 35*time.Second),

		SampleRate:     getEnvInt("MIC_SAMPLE_RATE", 44100),
		ChunkDuration:  getEnvDuration("CHUNK_DURATION", 20*time.Millisecond),
		StartThreshold: getEnvFloat("VAD_START_THRESHOLD", 0.012),
		StopThreshold:  getEnvFloat("VAD_STOP_THRESHOLD", 0.009),
		MaxRecord:      getEnvSeconds("MAX_RECORD_SECONDS", 7),
		PreRoll:        getEnvSeconds("PRE_ROLL_SECONDS", 0.20),
		SilenceToStop:  getEnvSeconds("SILENCE_SECONDS_TO_STOP", 0.45),
		MicKeywords:    getEnvList("MIC_KEYWORDS", []string{"USB", "Mic", "microphone", "Audio", "PnP"}),

		WakeWords:       getEnvList("WAKE_WORDS", []string{"ardomis", "ardo"}),
		WakeMaxDistance: getEnvInt("WAKE_MAX_DISTANCE", 2),
		WakeMinTokenLen: getEnvInt("WAKE_MIN_TOKEN_LEN", 5),
		WakeMaxLenGap:   getEnvInt("WAKE_MAX_LEN_GAP", 4),

		DBPath:        getEnv("MEMORY_DB_PATH", filepath.Join(base, "memory.db")),
		MemoryMaxRows: getEnvInt("MEMORY_MAX_ROWS", 800),
		StatePath:     getEnv("STATE_PATH", filepath.Join(base, "state.json")),
		Timezone:      getEnv("LOCAL_TIMEZONE", "America/New_York"),

		STTBackend:       getEnv("STT_BACKEND", "openai"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAISTTModel:   getEnv("OPENAI_STT_MODEL", "gpt-4o-transcribe"),
		WhisperModelPath: getEnv("WHISPER_MODEL_PATH", "third_party/whisper.cpp/models/ggml-base.en.bin"),

		DialogueBackend:    getEnv("DIALOGUE_BACKEND", "openai"),
		DeepSeekAPIKey:     getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekBaseURL:    getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
		DeepSeekModelFast:  getEnv("DEEPSEEK_MODEL_FAST", "deepseek-chat"),
		DeepSeekModelDeep:  getEnv("DEEPSEEK_MODEL_DEEP", "deepseek-reasoner"),
		DeepSeekTokensFast: getEnvInt("DEEPSEEK_MAX_TOKENS_FAST", 180),
		DeepSeekTokensDeep: getEnvInt("DEEPSEEK_MAX_TOKENS_DEEP", 450),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		TTSBackend:        getEnv("TTS_BACKEND", "elevenlabs"),
		ElevenLabsAPIKey:  getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID: getEnv("ELEVENLABS_VOICE_ID", ""),
		ElevenLabsModelID: getEnv("ELEVENLABS_MODEL_ID", "eleven_turbo_v2_5"),

		SFXDir:        getEnv("SFX_DIR", filepath.Join(base, "sfx")),
		BusURL:        getEnv("BUS_URL", ""),
		ControlSocket: ipc.SocketPath(),
		SentryDSN:     getEnv("SENTRY_DSN", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// Validate rejects settings the loop cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.StopThreshold >= c.StartThreshold {
		errs = append(errs, fmt.Errorf("stop threshold %.4f must be below start threshold %.4f", c.StopThreshold, c.StartThreshold))
	}
	if c.ChimeMin > c.ChimeMax {
		errs = append(errs, fmt.Errorf("chime min %s exceeds max %s", c.ChimeMin, c.ChimeMax))
	}
	if c.SampleRate <= 0 {
		errs = append(errs, errors.New("sample rate must be positive"))
	}
	for name, d := range map[string]time.Duration{
		"chunk duration":    c.ChunkDuration,
		"max record":        c.MaxRecord,
		"silence to stop":   c.SilenceToStop,
		"chat idle timeout": c.ChatIdleTimeout,
		"presence poll":     c.PresencePoll,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if len(c.WakeWords) == 0 {
		errs = append(errs, errors.New("at least one wake word is required"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}

	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// getEnvDuration accepts Go durations ("750ms") or bare seconds ("0.75").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(f * float64(time.Second))
	}
	return def
}

func getEnvSeconds(key string, def float64) time.Duration {
	return time.Duration(getEnvFloat(key, def) * float64(time.Second))
}

func getEnvList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		return result
	}
	return def
}
