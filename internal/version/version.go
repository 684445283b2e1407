package version

import (
	"fmt"
	"runtime"
)

// Заполняются через -ldflags при сборке релиза:
//
//	-X .../internal/version.version=1.4.0
//	-X .../internal/version.commit=<sha>
//	-X .../internal/version.date=<iso8601>
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Build описывает собранный бинарник сервиса регистрации.
type Build struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
}

// Current возвращает сведения о текущей сборке.
func Current() Build {
	return Build{
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
	}
}

// String — однострочное представление для стартового лога.
func (b Build) String() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s)", b.Version, b.Commit, b.Date, b.GoVersion)
}
