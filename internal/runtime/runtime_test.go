package runtime

import (
	"errors"
	"testing"

	"github.com/containerd/containerd/v2/core/images"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

func TestSelectImage(t *testing.T) {
	one := images.Image{Name: "import-1"}

	if _, err := selectImage(nil); !errors.Is(err, ErrEmptyArchive) {
		t.Fatalf("empty: err = %v, want ErrEmptyArchive", err)
	}

	got, err := selectImage([]images.Image{one})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != one.Name {
		t.Fatalf("name = %q, want %q", got.Name, one.Name)
	}

	if _, err := selectImage([]images.Image{one, {Name: "import-2"}}); !errors.Is(err, ErrMultipleImages) {
		t.Fatalf("multiple: err = %v, want ErrMultipleImages", err)
	}
}

func TestSummarize(t *testing.T) {
	d := digest.FromString("manifest")
	got := summarize("example.com/app:1", ocispec.Descriptor{
		MediaType: ocispec.MediaTypeImageManifest,
		Digest:    d,
		Size:      42,
	})

	if got.Name != "example.com/app:1" || got.Digest != d || got.Size != 42 {
		t.Fatalf("summary = %+v", got)
	}
	if got.MediaType != ocispec.MediaTypeImageManifest {
		t.Fatalf("media type = %q", got.MediaType)
	}
}

func TestDefaultPlatform(t *testing.T) {
	if p := defaultPlatform(); len(p) <= len("linux/") || p[:6] != "linux/" {
		t.Fatalf("defaultPlatform() = %q", p)
	}
}
