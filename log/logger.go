package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
)

type Level logging.Level

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var levelNames = map[Level]string{
	Debug:   "debug",
	Info:    "info",
	Notice:  "notice",
	Warning: "warning",
	Error:   "error",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// Parse a level name (case-insensitive).
func ParseLevel(name string) (Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for level, levelName := range levelNames {
		if levelName == name {
			return level, nil
		}
	}
	return Notice, fmt.Errorf("log: unknown level %q", name)
}

// Log formats for terminals and for plain sinks such as files.
var (
	colorFormat = logging.MustStringFormatter(
		`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
	)
	plainFormat = logging.MustStringFormatter(
		`[%{time:15:04:05.000}] [%{module}] [%{level}] %{message}`,
	)
)

// The internal leveled logger backend
var leveledBackend logging.LeveledBackend

// The logger interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Create a new named logger. Tracers and other components use the name to
// tag their output.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// Redirect log output to sink. Colored output is only used when sink is a
// terminal. The current verbosity level is preserved.
func SetSink(sink io.Writer) {
	level := logging.NOTICE
	if leveledBackend != nil {
		level = leveledBackend.GetLevel("")
	}

	format := plainFormat
	if isTerminal(sink) {
		format = colorFormat
	}

	backend := logging.NewBackendFormatter(logging.NewLogBackend(sink, "", 0), format)
	leveledBackend = logging.AddModuleLevel(backend)
	leveledBackend.SetLevel(level, "")
	logging.SetBackend(leveledBackend)
}

// Set logger verbosity.
func SetLevel(level Level) {
	loggerLevel := logging.NOTICE
	switch level {
	case Debug:
		loggerLevel = logging.DEBUG
	case Info:
		loggerLevel = logging.INFO
	case Warning:
		loggerLevel = logging.WARNING
	case Error:
		loggerLevel = logging.ERROR
	}

	leveledBackend.SetLevel(loggerLevel, "")
}

// Get the current verbosity.
func GetLevel() Level {
	switch leveledBackend.GetLevel("") {
	case logging.DEBUG:
		return Debug
	case logging.INFO:
		return Info
	case logging.WARNING:
		return Warning
	case logging.ERROR, logging.CRITICAL:
		return Error
	}
	return Notice
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func init() {
	SetSink(os.Stdout)
	SetLevel(Notice)
}
