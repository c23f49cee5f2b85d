// Package runtime loads container images into containerd.
//
// A [Runtime] connects to a containerd daemon and imports image archives
// streamed from an [io.Reader]. Imported images can be tagged under a
// caller-chosen reference and unpacked into a snapshotter so that containers
// can be created from them without a further pull.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "cruxpkg")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	imgs, err := rt.Import(ctx, archive, runtime.ImportOptions{
//	    Tag:    "docker.io/library/hello:latest",
//	    Unpack: true,
//	})
//	if err != nil {
//	    return err
//	}
package runtime
