package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog     zerolog.Logger
	diagFile    *os.File
	historyFile *os.File
	logMu       sync.Mutex
	logReady    bool
	pid         int
	dir         string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: LULL_LOG_PATH environment variable
	envPath := os.Getenv("LULL_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	historyPath := filepath.Join(dir, "session_log.txt")
	historyFile, err = os.OpenFile(historyPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if historyFile != nil {
		historyFile.Close()
		historyFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// SessionHistory appends one human-readable line to the session log,
// the running record of finished work and break blocks.
func SessionHistory(text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	historyFile.WriteString(line)
}

func Sound(channel, action string, volume int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("channel", channel).
		Str("action", action).
		Int("volume", volume).
		Msg("sound")
}

func TimerStart(kind string, minutes float64) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("kind", kind).
		Float64("minutes", minutes).
		Msg("timer_start")
}

func TimerDone(kind string, elapsed time.Duration) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("kind", kind).
		Float64("elapsed_min", elapsed.Minutes()).
		Msg("timer_done")
}

func SessionStart(work, rest float64) {
	if !logReady {
		return
	}
	diagLog.Info().
		Float64("work_min", work).
		Float64("break_min", rest).
		Msg("session_start")
}

func SessionEnd(completed int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("completed", completed).
		Msg("session_end")
}
