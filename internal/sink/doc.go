// Package sink writes container image streams to their destination.
//
// A destination is described by a [Target] and opened as a [Sink]. The set
// of destinations is closed: a file, standard output, a container runtime
// loader ("docker load" or "podman load") fed through its standard input,
// or a containerd image store. Callers write the image bytes and then call
// [Sink.Finalize] exactly once. Only the loader and containerd variants can
// fail at that point, when the loader process exits unsuccessfully or the
// import is rejected; finalizing surfaces both through the same error
// return.
//
// When no destination is given, [Detect] picks the first runtime found on
// the search path and falls back to a tarball named after the image.
//
// Example usage:
//
//	target := sink.Detect("hello", os.Getenv("PATH"))
//
//	s, err := sink.Open(ctx, target, sink.Options{})
//	if err != nil {
//	    return err
//	}
//
//	if _, err := io.Copy(s, image); err != nil {
//	    s.Finalize()
//	    return err
//	}
//	return s.Finalize()
package sink
