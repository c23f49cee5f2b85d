// Defines the wire protocol between the cruxpkg CLI and daemon.
//
// Every message is a JSON [Envelope] terminated by a newline. The envelope
// names a [Command] and carries a command-specific payload. A client sends
// exactly one request per connection; the daemon answers with one or more
// envelopes and closes the connection.
//
// Build requests are answered by a stream of [CmdEvent] envelopes, one per
// output event of the build process, ending with the terminal event:
//
//	{"command":"build","payload":{"base_dir":"/src","env_context":"/env","targets":["hello"]}}
//	{"command":"event","payload":{"session":"...","kind":"stdout","line":"compiling hello"}}
//	{"command":"event","payload":{"session":"...","kind":"exit","code":0}}
//
// All other requests receive a single [CmdOK] or [CmdError] envelope.
package protocol
