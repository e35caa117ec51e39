package logger

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// ANSI color codes, used only by the banner/section art below — logrus owns
// coloring for the leveled log lines themselves.
const (
	ColorReset  = "\033[0m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
)

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05"})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel sets the minimum level logrus will emit, by name
// ("debug", "info", "warn", "error").
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	base.SetLevel(parsed)
}

// Fields is a shorthand for structured key/value pairs attached to a log
// line, e.g. Debug(Fields{"addr": addr}, "datagram received").
type Fields = logrus.Fields

// Debug logs at debug level, with optional structured fields.
func Debug(fields Fields, format string, args ...interface{}) {
	base.WithFields(fields).Debugf(format, args...)
}

// Info logs at info level, with optional structured fields.
func Info(fields Fields, format string, args ...interface{}) {
	base.WithFields(fields).Infof(format, args...)
}

// Warn logs at warn level, with optional structured fields.
func Warn(fields Fields, format string, args ...interface{}) {
	base.WithFields(fields).Warnf(format, args...)
}

// Error logs at error level, with optional structured fields.
func Error(fields Fields, format string, args ...interface{}) {
	base.WithFields(fields).Errorf(format, args...)
}

// Success logs at info level tagged with a success field, so a structured
// log consumer can distinguish it from routine info lines without RakNet
// needing its own log level.
func Success(fields Fields, format string, args ...interface{}) {
	if fields == nil {
		fields = Fields{}
	}
	fields["outcome"] = "success"
	base.WithFields(fields).Infof(format, args...)
}

// Fatal logs at fatal level and exits, matching logrus's own Fatal
// semantics.
func Fatal(fields Fields, format string, args ...interface{}) {
	base.WithFields(fields).Fatalf(format, args...)
}

// Section prints a section header. Left as plain stdout art rather than a
// structured log line — it's operator-facing banner text, not telemetry.
func Section(title string) {
	border := "═══════════════════════════════════════════════════════════"
	fmt.Printf("\n%s╔%s╗%s\n", ColorCyan, border, ColorReset)
	fmt.Printf("%s║%s %-57s %s║%s\n", ColorCyan, ColorReset, title, ColorCyan, ColorReset)
	fmt.Printf("%s╚%s╝%s\n\n", ColorCyan, border, ColorReset)
}

// Banner prints the application banner.
func Banner(title, version string) {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║   ██████╗  █████╗ ██╗  ██╗███╗   ██╗███████╗████████╗     ║
║   ██╔══██╗██╔══██╗██║ ██╔╝████╗  ██║██╔════╝╚══██╔══╝     ║
║   ██████╔╝███████║█████╔╝ ██╔██╗ ██║█████╗     ██║        ║
║   ██╔══██╗██╔══██║██╔═██╗ ██║╚██╗██║██╔══╝     ██║        ║
║   ██║  ██║██║  ██║██║  ██╗██║ ╚████║███████╗   ██║        ║
║   ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝╚══════╝   ╚═╝        ║
║                                                           ║
║              %s%-37s%s║
║                    %sVersion %-7s%s                      ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, ColorCyan, title, ColorReset, ColorGreen, version, ColorReset)
}
