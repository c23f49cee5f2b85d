// Package process spawns external programs and streams their output.
//
// [Launch] starts a child process with its standard output and standard
// error connected to pipes owned by the returned [Handle]. The handle is
// consumed exactly once: either [Handle.Relay] turns it into an [Output]
// sequence, or [Handle.Wait] reaps the child directly.
//
// Relaying starts three goroutines per process. Two of them read lines from
// the stdout and stderr pipes, the third waits for the child to exit. All
// three send into one channel owned by the [Output], which yields the lines
// as [Event] values followed by a single [Terminal] event holding the exit
// status. Lines from one pipe keep their order; lines from different pipes
// interleave in arrival order.
//
// The terminal event is sent after both pipes reach end-of-stream, unless a
// descendant of the child keeps a pipe open for longer than the drain
// timeout. In that case the terminal event is sent anyway and the remaining
// lines follow it, so consumers that need every line should drain the
// sequence to its end rather than stop at the terminal event.
//
// Example usage:
//
//	h, err := process.Launch(ctx, process.Command{
//	    Dir:  "/src/project",
//	    Args: []string{"make", "all"},
//	})
//	if err != nil {
//	    return err
//	}
//
//	out := h.Relay(slog.Default())
//	defer out.Close()
//
//	for ev := range out.All() {
//	    switch ev.Kind {
//	    case process.Stdout, process.Stderr:
//	        fmt.Println(ev.Line)
//	    case process.Terminal:
//	        fmt.Println("exited:", ev.Status)
//	    }
//	}
package process
