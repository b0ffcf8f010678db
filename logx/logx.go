package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

type Level int32

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) ToString() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int32(l))
	}
}

func (l Level) color() string {
	switch l {
	case DEBUG:
		return ColorBlue
	case INFO:
		return ColorGreen
	case WARN:
		return ColorYellow
	default:
		return ColorRed
	}
}

func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "", "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level %q", s)
	}
}

var (
	logger   = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	minLevel atomic.Int32
	colored  atomic.Bool
)

func init() {
	minLevel.Store(int32(INFO))
	colored.Store(true)
}

// SetOutput redirects every category. Colors are dropped for anything
// that is not the process stderr.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
	colored.Store(w == os.Stderr)
}

func SetLevel(l Level) {
	minLevel.Store(int32(l))
}

func GetLevel() Level {
	return Level(minLevel.Load())
}

func write(l Level, category string, content ...interface{}) {
	if l < GetLevel() {
		return
	}
	message := fmt.Sprint(content...)
	tag := fmt.Sprintf("[%s][%s]", l.ToString(), category)
	if colored.Load() {
		tag = l.color() + tag + ColorReset
	}
	logger.Printf("%s: %s", tag, message)
}

func Debug(category string, content ...interface{}) {
	write(DEBUG, category, content...)
}

func Info(category string, content ...interface{}) {
	write(INFO, category, content...)
}

func Warn(category string, content ...interface{}) {
	write(WARN, category, content...)
}

func Error(category string, content ...interface{}) {
	write(ERROR, category, content...)
}

// Errorf logs an error message and returns a formatted error
func Errorf(category string, format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	Error(category, err.Error())
	return err
}
