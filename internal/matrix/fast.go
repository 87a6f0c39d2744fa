package matrix

import "fmt"

// FastLevel trades coverage for speed. It is selected by repeating the
// -F/--fast flag.
type FastLevel int

const (
	// Full bakes every valid configuration and runs checks.
	Full FastLevel = iota
	// SingleConfigWithChecks bakes only the first valid configuration and runs checks.
	SingleConfigWithChecks
	// AllConfigsNoChecks bakes every valid configuration and skips checks.
	AllConfigsNoChecks
	// SingleConfigNoChecks bakes only the first valid configuration and skips checks.
	SingleConfigNoChecks
)

// FastLevelFromCount maps the number of times -F was given to a level.
func FastLevelFromCount(n int) FastLevel {
	switch {
	case n <= 0:
		return Full
	case n == 1:
		return SingleConfigWithChecks
	case n == 2:
		return AllConfigsNoChecks
	default:
		return SingleConfigNoChecks
	}
}

// Single reports whether enumeration stops after the first configuration.
func (l FastLevel) Single() bool {
	return l == SingleConfigWithChecks || l == SingleConfigNoChecks
}

// RunsChecks reports whether baked projects should be checked.
func (l FastLevel) RunsChecks() bool {
	return l == Full || l == SingleConfigWithChecks
}

func (l FastLevel) String() string {
	switch l {
	case Full:
		return "full"
	case SingleConfigWithChecks:
		return "single-config"
	case AllConfigsNoChecks:
		return "all-configs-no-checks"
	case SingleConfigNoChecks:
		return "single-config-no-checks"
	default:
		return fmt.Sprintf("FastLevel(%d)", int(l))
	}
}
