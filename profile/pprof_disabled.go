//go:build !pprof

package profile

// start is a no-op when built without the pprof tag. [Config.Start]
// only reaches it with a non-empty mode, which cannot be configured in
// this build.
func start(string, string, bool) interface{ Stop() } {
	return ignore{}
}
