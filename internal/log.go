package internal

import "github.com/tliron/commonlog"

// Loggers for the runtime's subsystems. Nothing is emitted until a commonlog
// backend is configured; the metaobj package installs the simple backend.
var (
	logRuntime   = commonlog.GetLogger("metaobj")
	logMeta      = commonlog.GetLogger("metaobj.meta")
	logLifecycle = commonlog.GetLogger("metaobj.lifecycle")
	logPerform   = commonlog.GetLogger("metaobj.perform")
	logFault     = commonlog.GetLogger("metaobj.fault")
)
