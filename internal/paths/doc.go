// Provides platform-appropriate paths for the daemon and the CLI.
//
// All paths follow XDG conventions on Linux and platform-native conventions
// on macOS and Windows. The name "cruxpkg" is used as the subdirectory
// under each base path.
package paths
