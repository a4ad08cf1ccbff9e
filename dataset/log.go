package dataset

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// LogOutput receives the package log lines.
var LogOutput io.Writer = color.Error

var (
	logTag  = color.New(color.FgCyan)
	warnTag = color.New(color.FgYellow)
)

func logf(tag *color.Color, level, format string, args ...any) {
	_, _ = fmt.Fprintf(LogOutput, "[dataset] %s %s\n", tag.Sprint(level), fmt.Sprintf(format, args...))
}

func logInfo(format string, args ...any) { logf(logTag, "LOG", format, args...) }
func logWarn(format string, args ...any) { logf(warnTag, "WARN", format, args...) }
