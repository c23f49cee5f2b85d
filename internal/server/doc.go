// Package server implements the cruxpkg daemon.
//
// The daemon listens on a Unix domain socket for JSON-encoded commands
// from the cruxpkg CLI. Each connection carries a single request: the
// client sends a newline-delimited JSON envelope, the server dispatches
// the command and writes its response before closing the connection.
//
// Build requests are answered with a stream of event envelopes carrying
// the driver's output as it is produced. Clean, status and shutdown
// requests receive a single response. Builds and cleans are delegated to
// a [builder.Builder].
//
// Example usage:
//
//	mk, err := builder.NewMake(builder.Config{BuildMk: "/usr/share/cruxpkg/build.mk"}, nil)
//	if err != nil {
//	    return err
//	}
//
//	srv, err := server.New(server.Config{Builder: mk})
//	if err != nil {
//	    return err
//	}
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	srv.Wait()
package server
