package config

import (
	"strings"

	"github.com/YaCodeDev/GoYaTgBotAPI/yalogger"
)

// safetyCheck replaces a nil logger with the default one.
func safetyCheck(log *yalogger.Logger) {
	if log == nil {
		return
	}

	if *log == nil {
		*log = yalogger.NewBaseLogger(nil).NewLogger()

		(*log).Warn("Logger is nil, using default logger")
	}
}

// toScreamingSnakeCase converts camelCase and PascalCase to SCREAMING_SNAKE_CASE,
// keeping acronyms together: "HTTPResponse" becomes "HTTP_RESPONSE".
func toScreamingSnakeCase(s string) string {
	s = matchFirstCap.ReplaceAllString(s, "${1}_${2}")
	s = matchAllCap.ReplaceAllString(s, "${1}_${2}")

	return strings.ToUpper(s)
}
