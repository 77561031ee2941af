package metaobj

import (
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple" // default backend
)

// ConfigureLogging sets the log verbosity and destination from cfg. Runtime
// diagnostics go through commonlog under the "metaobj" name hierarchy.
func ConfigureLogging(cfg Config) {
	if cfg.LogPath == "" {
		commonlog.Configure(cfg.Verbosity, nil)
		return
	}
	path := cfg.LogPath
	commonlog.Configure(cfg.Verbosity, &path)
}
