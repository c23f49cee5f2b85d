package sink

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseRuntime(t *testing.T) {
	for _, name := range []string{"docker", "podman", "containerd"} {
		r, err := ParseRuntime(name)
		if err != nil {
			t.Fatalf("ParseRuntime(%q): %v", name, err)
		}
		if r.String() != name {
			t.Fatalf("String() = %q, want %q", r.String(), name)
		}
	}

	if _, err := ParseRuntime("invalid"); !errors.Is(err, ErrInvalidRuntime) {
		t.Fatalf("err = %v, want ErrInvalidRuntime", err)
	}
}

func TestFileTarget(t *testing.T) {
	if got := FileTarget("-"); got.Kind != Stdout {
		t.Fatalf("FileTarget(-).Kind = %v, want Stdout", got.Kind)
	}
	if got := FileTarget("out.tar"); got.Kind != File || got.Path != "out.tar" {
		t.Fatalf("FileTarget(out.tar) = %+v", got)
	}
}

func TestRuntimeTarget(t *testing.T) {
	if got := RuntimeTarget(Docker); got.Kind != Loader || got.Runtime != Docker {
		t.Fatalf("RuntimeTarget(Docker) = %+v", got)
	}
	if got := RuntimeTarget(ContainerdRuntime); got.Kind != Containerd {
		t.Fatalf("RuntimeTarget(containerd).Kind = %v, want Containerd", got.Kind)
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		runtime string
		want    Target
		wantErr error
	}{
		{"file", "out.tar", "", Target{Kind: File, Path: "out.tar"}, nil},
		{"stdout", "-", "", Target{Kind: Stdout}, nil},
		{"docker", "", "docker", Target{Kind: Loader, Runtime: Docker}, nil},
		{"podman", "", "podman", Target{Kind: Loader, Runtime: Podman}, nil},
		{"containerd", "", "containerd", Target{Kind: Containerd, Runtime: ContainerdRuntime}, nil},
		{"unknown runtime", "", "lxc", Target{}, ErrInvalidRuntime},
		{"both", "out.tar", "docker", Target{}, ErrConflictingTargets},
		{"neither", "", "", Target{}, ErrNoTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.file, tt.runtime)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseTarget() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseTarget() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTargetString(t *testing.T) {
	tests := []struct {
		target Target
		want   string
	}{
		{FileTarget("a.tar"), "file 'a.tar'"},
		{FileTarget("-"), "stdout"},
		{RuntimeTarget(Docker), "Docker runtime"},
		{RuntimeTarget(Podman), "Podman runtime"},
		{RuntimeTarget(ContainerdRuntime), "containerd image store"},
	}
	for _, tt := range tests {
		if got := tt.target.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDetect(t *testing.T) {
	root := t.TempDir()

	dockerBin := filepath.Join(root, "docker-bin")
	podmanBin := filepath.Join(root, "podman-bin")
	combinedBin := filepath.Join(root, "combined-bin")
	neitherBin := filepath.Join(root, "neither-bin")

	for _, dir := range []string{dockerBin, podmanBin, combinedBin, neitherBin} {
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	touch := func(path string) {
		if err := os.WriteFile(path, nil, 0755); err != nil {
			t.Fatal(err)
		}
	}
	touch(filepath.Join(dockerBin, "docker"))
	touch(filepath.Join(podmanBin, "podman"))
	touch(filepath.Join(combinedBin, "docker"))
	touch(filepath.Join(combinedBin, "podman"))

	// A directory named like a runtime is not an executable.
	if err := os.Mkdir(filepath.Join(neitherBin, "docker"), 0755); err != nil {
		t.Fatal(err)
	}

	join := func(dirs ...string) string {
		return strings.Join(dirs, string(os.PathListSeparator))
	}

	tests := []struct {
		name string
		path string
		want Target
	}{
		{"docker first", join(dockerBin, podmanBin, combinedBin), RuntimeTarget(Docker)},
		{"podman first", join(podmanBin, dockerBin, combinedBin), RuntimeTarget(Podman)},
		{"docker wins within a directory", join(combinedBin, podmanBin, dockerBin), RuntimeTarget(Docker)},
		{"neither", join(neitherBin), FileTarget("test-container.tar")},
		{"empty path", "", FileTarget("test-container.tar")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect("test", tt.path); got != tt.want {
				t.Fatalf("Detect = %+v, want %+v", got, tt.want)
			}
		})
	}
}
