// Package coreext installs every built-in class. Import it for side effects
// before creating a runtime.
package coreext

import (
	// importing for side effects
	_ "github.com/zephyrtronium/metaobj/coreext/array"
	_ "github.com/zephyrtronium/metaobj/coreext/boolean"
	_ "github.com/zephyrtronium/metaobj/coreext/collector"
	_ "github.com/zephyrtronium/metaobj/coreext/date"
	_ "github.com/zephyrtronium/metaobj/coreext/dict"
	_ "github.com/zephyrtronium/metaobj/coreext/duration"
	_ "github.com/zephyrtronium/metaobj/coreext/number"
	_ "github.com/zephyrtronium/metaobj/coreext/str"
)
