// Package profile provides optional runtime profiling for maillist.
//
// Profiling uses [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag. Without the tag, [Profiler.Start] returns a no-op
// stopper and [Modes] is empty.
//
//	p := profile.Make(
//		profile.WithMode("cpu"),
//		profile.WithPath("/tmp/maillist"),
//	)
//	defer p.Start().Stop()
//
// Profiles are written to the configured directory with names matching the
// mode (cpu.pprof, mem.pprof, ...). Analyze them with:
//
//	go tool pprof -http=: /tmp/maillist/cpu.pprof
//
// The pprof build also imports [net/http/pprof], so the handlers under
// /debug/pprof/ are available from the serve command's mux.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
