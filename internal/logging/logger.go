package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
)

// Level represents severity.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var levelPrefixes = map[Level]string{
	LevelDebug: color.New(color.FgHiBlack).Sprint("DEBUG"),
	LevelInfo:  color.New(color.FgBlue).Sprint("INFO"),
	LevelWarn:  color.New(color.FgYellow).Sprint("WARN"),
	LevelError: color.New(color.FgRed).Sprint("ERROR"),
}

var currentLevel = int32(LevelInfo)

var baseLogger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)

// SetLevel parses and sets the global log level. Unknown names are ignored.
func SetLevel(s string) {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return
	}
	atomic.StoreInt32(&currentLevel, int32(l))
}

func GetLevel() Level { return Level(atomic.LoadInt32(&currentLevel)) }

// SetOutput redirects every log line.
func SetOutput(w io.Writer) {
	baseLogger.SetOutput(w)
}

func logf(l Level, format string, args ...interface{}) {
	if GetLevel() > l {
		return
	}
	// Without args the format is already a message; formatting it again would mangle literal % signs.
	if len(args) == 0 {
		baseLogger.Printf("[%s] %s", levelPrefixes[l], format)
		return
	}
	baseLogger.Printf("[%s] %s", levelPrefixes[l], fmt.Sprintf(format, args...))
}

func Debugf(format string, a ...interface{}) { logf(LevelDebug, format, a...) }
func Infof(format string, a ...interface{})  { logf(LevelInfo, format, a...) }
func Warnf(format string, a ...interface{})  { logf(LevelWarn, format, a...) }
func Errorf(format string, a ...interface{}) { logf(LevelError, format, a...) }

// TimeTrack logs how long a phase took at debug level.
func TimeTrack(start time.Time, label string) {
	Debugf("%s took %s", label, time.Since(start))
}
