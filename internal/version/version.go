package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is set at build time with
// -ldflags "-X github.com/Kush-Singh-26/devserve/internal/version.Version=v1.2.3".
var Version = "dev"

// Resolve returns Version, falling back to the module version recorded in
// the binary when installed with go install.
func Resolve() string {
	if Version != "dev" && Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

// String returns the one-line version banner.
func String() string {
	return fmt.Sprintf("devserve %s (%s %s/%s)", Resolve(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
