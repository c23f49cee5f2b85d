// Package builder drives package builds through an external make-based
// driver.
//
// A [Builder] exposes two operations over a set of named targets. [Builder.Build]
// starts the driver in the background and returns its output as a
// [process.Output] sequence; a failing build is reported by the terminal
// exit status inside that sequence, not as an error. [Builder.Clean] runs the
// driver to completion and returns a [*CleanError] carrying the captured
// output when the driver fails.
//
// [Make] is the make-driven implementation. It invokes
//
//	<make> -f <build.mk> -C <base dir> <CONTEXT_VAR>=<env context> <goals...>
//
// where the goals are "build" or "clean" for an empty target set, and
// "build/<name>" or "clean/<name>" per target otherwise. On success the
// driver leaves a result-<name> link and a result-<name>-buildCache link per
// target in the base directory. Cleaning removes them together with the
// paths they reference.
//
// Example usage:
//
//	b, err := builder.NewMake(builder.Config{
//	    MakeBin: "make",
//	    BuildMk: "/usr/share/cruxpkg/build.mk",
//	}, slog.Default())
//	if err != nil {
//	    return err
//	}
//
//	out, err := b.Build(ctx, ".", envPath, []string{"hello"})
//	if err != nil {
//	    return err
//	}
//	defer out.Close()
//
//	res := out.Drain()
//	if !res.Status.Success() {
//	    return fmt.Errorf("build failed: %s", res.Status)
//	}
package builder
