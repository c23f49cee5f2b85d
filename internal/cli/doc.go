// Parses flags and runs the cruxpkg commands.
//
// Global flags:
//
//	-q, --quiet       Suppress informational output.
//	-v, --verbose     Enable verbose output.
//	-d, --debug       Enable debug output.
//	    --log-format  Log format, "text" or "json".
//	-c, --config      Load configuration from a YAML file.
//	-s, --socket      Unix socket path of the daemon.
//	    --make-bin    Build driver interpreter ($CRUX_MAKE_BIN).
//	    --build-mk    Build driver script ($CRUX_BUILD_MK).
//
// Flags override the configuration file at $XDG_CONFIG_HOME/cruxpkg/config.yaml,
// which in turn overrides build-time defaults set via linker flags. Keys in
// the configuration file are flag names:
//
//	make-bin: gmake
//	build-mk: /usr/share/cruxpkg/build.mk
//	log-format: json
//
// After parsing, the global logger is reconfigured to reflect the final
// level, format and verbosity before the command runs.
package cli
