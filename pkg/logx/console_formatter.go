package logx

import (
	"fmt"
	"strings"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorWhite = "\033[97m"

	colorBoldRed    = "\033[1;31m"
	colorBoldYellow = "\033[1;33m"
	colorBoldCyan   = "\033[1;36m"
	colorBoldGreen  = "\033[1;32m"
)

// ConsoleFormatter formats logs for console output with colors
type ConsoleFormatter struct {
	config *Config
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(config *Config) *ConsoleFormatter {
	return &ConsoleFormatter{config: config}
}

func (f *ConsoleFormatter) paint(b *strings.Builder, color, s string) {
	if f.config.EnableColors {
		b.WriteString(color)
		b.WriteString(s)
		b.WriteString(colorReset)
		return
	}
	b.WriteString(s)
}

// Format formats a log entry as a single console line, followed by the
// error and structured data on indented lines when present.
func (f *ConsoleFormatter) Format(entry *LogEntry) ([]byte, error) {
	var b strings.Builder

	if f.config.EnableTimestamp {
		f.paint(&b, colorGray, formatTimestamp(entry.Timestamp, f.config.TimeFormat))
		b.WriteString(" ")
	}

	b.WriteString(f.formatLevel(entry.Level))
	b.WriteString(" ")

	if f.config.EnableCaller && entry.Caller != "" {
		f.paint(&b, colorGray, "["+entry.Caller+"]")
		b.WriteString(" ")
	}

	if component, ok := entry.Fields["component"]; ok {
		f.paint(&b, colorCyan, fmt.Sprintf("%v:", component))
		b.WriteString(" ")
	}

	f.paint(&b, colorWhite, entry.Message)

	pairs := make([]string, 0, len(entry.Fields))
	for _, k := range entry.Fields.sortedKeys() {
		if k == "component" {
			continue
		}
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
	}
	if len(pairs) > 0 {
		b.WriteString(" ")
		f.paint(&b, colorCyan, strings.Join(pairs, " "))
	}
	b.WriteString("\n")

	if entry.Error != nil {
		f.paint(&b, colorRed, "  error: "+entry.Error.Error())
		b.WriteString("\n")
	}

	if entry.Data != nil {
		for _, line := range strings.Split(prettyJSON(entry.Data), "\n") {
			f.paint(&b, colorGray, "  "+line)
			b.WriteString("\n")
		}
	}

	return []byte(b.String()), nil
}

func (f *ConsoleFormatter) formatLevel(level Level) string {
	if !f.config.EnableColors {
		return fmt.Sprintf("[%-5s]", level.String())
	}

	var color string
	switch level {
	case LevelTrace:
		color = colorGray
	case LevelDebug:
		color = colorBoldCyan
	case LevelInfo:
		color = colorBoldGreen
	case LevelWarn:
		color = colorBoldYellow
	case LevelError, LevelFatal:
		color = colorBoldRed
	default:
		return fmt.Sprintf("[%s]", level.String())
	}
	return fmt.Sprintf("%s[%-5s]%s", color, level.String(), colorReset)
}
