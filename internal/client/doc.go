// Client side of the cruxpkg daemon protocol.
//
// Each call dials the daemon socket, sends one request and reads the
// response. [Build] delivers streamed output events to a callback as they
// arrive; the other calls return a single result.
//
//	status, err := client.Build(ctx, paths.Socket(), req, func(ev process.Event) {
//	    fmt.Println(ev.Line)
//	})
package client
