// Package logger is the bot's leveled logger. It is built on logrus: a colored
// console formatter, a hook that mirrors entries into log files and a hook
// that forwards them to Discord webhooks.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/webhook"
	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelCritical LogLevel = iota
	LevelError
	LevelWarn
	LevelSuccess
	LevelInfo
	LevelDebug
	LevelSystem
)

var levelNames = [...]string{"CRITICAL", "ERROR", "WARN", "SUCCESS", "INFO", "DEBUG", "SYSTEM"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Color returns the ANSI color code for the log level
func (l LogLevel) Color() string {
	switch l {
	case LevelCritical:
		return "\033[1;31m"
	case LevelError:
		return "\033[31m"
	case LevelWarn:
		return "\033[33m"
	case LevelSuccess:
		return "\033[32m"
	case LevelInfo:
		return "\033[36m"
	case LevelDebug:
		return "\033[35m"
	case LevelSystem:
		return "\033[34m"
	default:
		return colorReset
	}
}

// DiscordColor returns the embed color used when the level is sent to a webhook
func (l LogLevel) DiscordColor() int {
	switch l {
	case LevelCritical, LevelError:
		return 0xFF0000
	case LevelWarn:
		return 0xFFFF00
	case LevelSuccess:
		return 0x00FF00
	case LevelInfo:
		return 0x0000FF
	case LevelDebug:
		return 0x800080
	case LevelSystem:
		return 0x808080
	default:
		return 0xFFFFFF
	}
}

// logrusLevel maps the bot levels onto logrus severities.
func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LevelCritical, LevelError:
		return logrus.ErrorLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelDebug:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

const (
	colorReset      = "\033[0m"
	timestampFormat = "2006-01-02 15:04:05"

	fieldLevel  = "pancy_level"
	fieldPrefix = "prefix"
)

func entryLevel(e *logrus.Entry) LogLevel {
	if l, ok := e.Data[fieldLevel].(LogLevel); ok {
		return l
	}
	return LevelInfo
}

func entryPrefix(e *logrus.Entry) string {
	p, _ := e.Data[fieldPrefix].(string)
	return p
}

// lineFormatter renders "[time] [LEVEL] [prefix]: message".
type lineFormatter struct {
	colors bool
}

func (f *lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	level := entryLevel(e)
	name := level.String()
	if f.colors {
		name = level.Color() + name + colorReset
	}
	return []byte(fmt.Sprintf("[%s] [%s] [%s]: %s\n", e.Time.Format(timestampFormat), name, entryPrefix(e), e.Message)), nil
}

// fileHook appends every entry to combined.log and errors to error.log.
type fileHook struct {
	formatter logrus.Formatter
	combined  io.WriteCloser
	errors    io.WriteCloser
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(e *logrus.Entry) error {
	line, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	if h.combined != nil {
		h.combined.Write(line)
	}
	if h.errors != nil && entryLevel(e) <= LevelError {
		h.errors.Write(line)
	}
	return nil
}

func (h *fileHook) Close() {
	if h.combined != nil {
		h.combined.Close()
	}
	if h.errors != nil {
		h.errors.Close()
	}
}

// webhookHook forwards entries to Discord: errors to one webhook, the rest to another.
type webhookHook struct {
	errorHook *webhook.Hook
	logsHook  *webhook.Hook
}

func (h *webhookHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *webhookHook) Fire(e *logrus.Entry) error {
	level := entryLevel(e)
	target := h.logsHook
	if level <= LevelError {
		target = h.errorHook
	}
	if target == nil {
		return nil
	}

	embed := webhook.Embed(
		fmt.Sprintf("[%s] %s", level.String(), entryPrefix(e)),
		fmt.Sprintf("```%s```", e.Message),
		level.DiscordColor(),
	)
	go target.Send(embed)
	return nil
}

// Options configures a Logger.
type Options struct {
	// Dir holds combined.log and error.log. Empty disables file output.
	Dir          string
	ErrorWebhook string
	LogsWebhook  string
	// Console defaults to stdout.
	Console io.Writer
	Debug   bool
}

// Logger is the main logging structure
type Logger struct {
	base  *logrus.Logger
	files *fileHook
	mu    sync.Mutex
}

var (
	logger *Logger
	once   sync.Once
)

// Init initializes the global logger instance
func Init(errorWebhook, logsWebhook string) *Logger {
	once.Do(func() {
		logger = New(Options{Dir: "logs", ErrorWebhook: errorWebhook, LogsWebhook: logsWebhook, Debug: true})
	})
	return logger
}

// Get returns the global logger, a console-only one if Init was never called
func Get() *Logger {
	once.Do(func() {
		logger = New(Options{Debug: true})
	})
	return logger
}

// New builds a Logger from opts.
func New(opts Options) *Logger {
	if opts.Console == nil {
		opts.Console = os.Stdout
	}

	base := logrus.New()
	base.SetOutput(opts.Console)
	base.SetFormatter(&lineFormatter{colors: true})
	base.SetLevel(logrus.InfoLevel)
	if opts.Debug {
		base.SetLevel(logrus.DebugLevel)
	}

	l := &Logger{base: base}

	if opts.Dir != "" {
		l.files = openFiles(opts.Dir)
		base.AddHook(l.files)
	}

	wh := &webhookHook{
		errorHook: webhook.MustParseOrNil(opts.ErrorWebhook),
		logsHook:  webhook.MustParseOrNil(opts.LogsWebhook),
	}
	if wh.errorHook != nil || wh.logsHook != nil {
		base.AddHook(wh)
	}

	return l
}

func openFiles(dir string) *fileHook {
	h := &fileHook{formatter: &lineFormatter{}}
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("Error creating logs directory: %v\n", err)
		return h
	}

	var err error
	h.combined, err = os.OpenFile(filepath.Join(dir, "combined.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("Error opening combined log file: %v\n", err)
		h.combined = nil
	}
	h.errors, err = os.OpenFile(filepath.Join(dir, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("Error opening error log file: %v\n", err)
		h.errors = nil
	}
	return h
}

func (l *Logger) log(level LogLevel, message, prefix string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.base.WithFields(logrus.Fields{
		fieldLevel:  level,
		fieldPrefix: prefix,
	}).WithTime(time.Now()).Log(level.logrusLevel(), message)
}

// Close closes the log files
func (l *Logger) Close() {
	if l.files != nil {
		l.files.Close()
	}
}

func (l *Logger) Critical(message string, prefix string) { l.log(LevelCritical, message, prefix) }
func (l *Logger) Error(message string, prefix string)    { l.log(LevelError, message, prefix) }
func (l *Logger) Warn(message string, prefix string)     { l.log(LevelWarn, message, prefix) }
func (l *Logger) Success(message string, prefix string)  { l.log(LevelSuccess, message, prefix) }
func (l *Logger) Info(message string, prefix string)     { l.log(LevelInfo, message, prefix) }
func (l *Logger) Debug(message string, prefix string)    { l.log(LevelDebug, message, prefix) }
func (l *Logger) System(message string, prefix string)   { l.log(LevelSystem, message, prefix) }

// Package-level helpers using the global logger

func Critical(message string, prefix string) { Get().Critical(message, prefix) }
func Error(message string, prefix string)    { Get().Error(message, prefix) }
func Warn(message string, prefix string)     { Get().Warn(message, prefix) }
func Success(message string, prefix string)  { Get().Success(message, prefix) }
func Info(message string, prefix string)     { Get().Info(message, prefix) }
func Debug(message string, prefix string)    { Get().Debug(message, prefix) }
func System(message string, prefix string)   { Get().System(message, prefix) }
