package internal

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Name of the program, used for logging groups and directory names.
const Name = "cruxpkg"

const (
	undefined  = "(undefined)" // Placeholder for unset build variables.
	localBuild = "(local)"     // Version string of a non-pipeline build.
	mainBranch = "main"        // Stage omitted from version strings.
)

// Set via -ldflags "-X github.com/cruciblehq/cruxpkg/internal.<name>=<value>".
var (
	version   = "" // Release version (e.g., "v1.2.3").
	stage     = "" // Git branch the build came from (e.g., "main", "staging").
	gitCommit = "" // Commit hash (e.g., "a1b2c3d4").
	buildMk   = "" // Default build driver script (e.g., "/usr/share/cruxpkg/build.mk").

	rawQuiet   = "false" // Default for quiet mode.
	rawDebug   = "false" // Default for debug mode.
	rawVerbose = "false" // Default for verbose mode.
)

// Identifies the running binary.
type BuildInfo struct {
	Version string // Release version without a "v" prefix.
	Stage   string // Lowercased branch name.
	Commit  string // Commit hash.
	Arch    string // GOARCH of the binary.
}

// Returns the build information, with "(undefined)" for unset variables.
//
// Local builds without a commit variable fall back to the VCS revision
// recorded by the Go toolchain, when available.
func Info() BuildInfo {
	info := BuildInfo{
		Version: orUndefined(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(version)), "v")),
		Stage:   orUndefined(strings.ToLower(strings.TrimSpace(stage))),
		Commit:  orUndefined(strings.TrimSpace(gitCommit)),
		Arch:    runtime.GOARCH,
	}

	if info.Commit == undefined {
		if rev := vcsRevision(); rev != "" {
			info.Commit = rev
		}
	}

	return info
}

// Returns the release version, or "(undefined)".
func Version() string {
	return Info().Version
}

// Returns the default build driver script, which may be empty.
func BuildMk() string {
	return strings.TrimSpace(buildMk)
}

// Reports whether the binary was built outside the release pipeline.
//
// Pipeline builds set version, stage and commit through linker flags.
func IsLocal() bool {
	return strings.TrimSpace(version) == "" ||
		strings.TrimSpace(stage) == "" ||
		strings.TrimSpace(gitCommit) == ""
}

// Returns a one-line description of the build.
//
// Local builds return "(local)", followed by the VCS revision if the
// toolchain recorded one. Pipeline builds return
// "<version>[+<stage>] <commit> [<arch>]", omitting the stage for main.
func VersionString() string {
	info := Info()

	if IsLocal() {
		if info.Commit != undefined {
			return localBuild + " " + info.Commit
		}
		return localBuild
	}

	s := ""
	if info.Stage != mainBranch {
		s = "+" + info.Stage
	}

	return fmt.Sprintf("%s%s %s [%s]", info.Version, s, info.Commit, info.Arch)
}

func orUndefined(s string) string {
	if s == "" {
		return undefined
	}
	return s
}

// Returns the vcs.revision setting embedded by the toolchain.
func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
