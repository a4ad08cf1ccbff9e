package glyphscape

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// LogOutput receives all log lines written by the package. It defaults to
// stderr through fatih/color, which drops the escape codes when stderr is
// not a terminal.
var LogOutput io.Writer = color.Error

var (
	logTag   = color.New(color.FgCyan)
	warnTag  = color.New(color.FgYellow)
	errorTag = color.New(color.FgRed, color.Bold)
)

func logf(tag *color.Color, level, format string, args ...any) {
	_, _ = fmt.Fprintf(LogOutput, "[glyphscape] %s %s\n", tag.Sprint(level), fmt.Sprintf(format, args...))
}

func logInfo(format string, args ...any)  { logf(logTag, "LOG", format, args...) }
func logWarn(format string, args ...any)  { logf(warnTag, "WARN", format, args...) }
func logError(format string, args ...any) { logf(errorTag, "ERROR", format, args...) }
