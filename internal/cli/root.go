package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/cruciblehq/cruxpkg/internal"
	"github.com/cruciblehq/cruxpkg/internal/builder"
	"github.com/cruciblehq/cruxpkg/internal/logging"
	"github.com/cruciblehq/cruxpkg/internal/paths"
	"github.com/cruciblehq/cruxpkg/internal/runtime"
)

// Represents the root command for cruxpkg.
var RootCmd struct {
	Quiet     bool            `short:"q" help:"Suppress informational output."`
	Verbose   bool            `short:"v" help:"Enable verbose output."`
	Debug     bool            `short:"d" help:"Enable debug output."`
	LogFormat string          `name:"log-format" default:"text" enum:"text,json" help:"Log format (${enum})."`
	Config    kong.ConfigFlag `short:"c" help:"Load configuration from a YAML file." placeholder:"FILE"`
	Socket    string          `short:"s" help:"Override the default Unix socket path." placeholder:"PATH"`
	MakeBin   string          `name:"make-bin" env:"CRUX_MAKE_BIN" default:"${make_bin}" help:"Build driver interpreter." placeholder:"BIN"`
	BuildMk   string          `name:"build-mk" env:"CRUX_BUILD_MK" default:"${build_mk}" help:"Build driver script." placeholder:"FILE"`

	Build   BuildCmd   `cmd:"" help:"Build targets."`
	Clean   CleanCmd   `cmd:"" help:"Remove the build artifacts of targets."`
	Load    LoadCmd    `cmd:"" help:"Write an image archive to a file, stdout or a container runtime."`
	Serve   ServeCmd   `cmd:"" help:"Run the daemon."`
	Status  StatusCmd  `cmd:"" help:"Show daemon status."`
	Stop    StopCmd    `cmd:"" help:"Stop the daemon."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Build and package orchestration.\n\nRuns the build driver, streams its output and loads the resulting images."),
		kong.UsageOnError(),
		kong.Configuration(configLoader, paths.ConfigFile()),
		kong.Vars{
			"version":  internal.VersionString(),
			"make_bin": builder.DefaultMakeBin,
			"build_mk": internal.BuildMk(),

			"containerd_address":   runtime.DefaultAddress,
			"containerd_namespace": runtime.DefaultNamespace,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Replaces the global logger based on CLI flags.
func configureLogger() {
	internal.SetDebug(RootCmd.Debug || internal.IsDebug())
	internal.SetQuiet(RootCmd.Quiet || internal.IsQuiet())
	internal.SetVerbose(RootCmd.Verbose || internal.IsVerbose())

	format, err := logging.ParseFormat(RootCmd.LogFormat)
	if err != nil {
		slog.Warn("falling back to text logs", "error", err)
	}

	slog.SetDefault(logging.New(os.Stderr, logging.Options{
		Format:  format,
		Level:   internal.LogLevel(),
		Verbose: internal.IsVerbose(),
	}))
}

// Creates the builder configured by the global flags.
func newBuilder() (*builder.Make, error) {
	return builder.NewMake(builder.Config{
		MakeBin: RootCmd.MakeBin,
		BuildMk: RootCmd.BuildMk,
	}, slog.Default())
}

// Returns the daemon socket path.
func socketPath() string {
	if RootCmd.Socket != "" {
		return RootCmd.Socket
	}
	return paths.Socket()
}
