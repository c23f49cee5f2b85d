package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	goruntime "runtime"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

const (

	// Default containerd socket address.
	DefaultAddress = "/run/containerd/containerd.sock"

	// Default containerd namespace for imported images.
	DefaultNamespace = "cruxpkg"

	// Default snapshotter images are unpacked into.
	DefaultSnapshotter = "overlayfs"
)

// Manages the containerd client and provides image import.
type Runtime struct {
	client      *containerd.Client // Containerd client for managing images.
	snapshotter string             // Snapshotter used when unpacking.
}

// Controls how an archive is imported.
type ImportOptions struct {
	Tag      string // Reference to tag the imported image with. Empty keeps the archive's names.
	Platform string // OCI platform to import (e.g., "linux/amd64"). Empty uses the host platform.
	Unpack   bool   // Whether to unpack the image into the snapshotter after import.
}

// Summary of an imported image.
type Image struct {
	Name      string        // Image reference.
	Digest    digest.Digest // Digest of the image's target descriptor.
	MediaType string        // Media type of the target descriptor.
	Size      int64         // Size of the target descriptor.
}

// Creates a runtime connected to the containerd socket at the given address.
//
// The namespace scopes all containerd operations to a single tenant. Empty
// address and namespace use [DefaultAddress] and [DefaultNamespace]. The
// runtime must be closed when no longer needed.
func New(address, namespace string) (*Runtime, error) {
	if address == "" {
		address = DefaultAddress
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	return &Runtime{client: client, snapshotter: DefaultSnapshotter}, nil
}

// Closes the containerd client connection.
func (rt *Runtime) Close() error {
	return rt.client.Close()
}

// Imports an image archive read from r.
//
// The archive may be an OCI layout or a Docker save tarball. When a tag is
// requested the archive must contain exactly one image, which is tagged
// under that reference; the record created by the import is removed if its
// name differs. With Unpack set, the layers for the selected platform are
// unpacked into the snapshotter.
func (rt *Runtime) Import(ctx context.Context, r io.Reader, opts ImportOptions) ([]Image, error) {
	platform := opts.Platform
	if platform == "" {
		platform = defaultPlatform()
	}

	p, err := platforms.Parse(platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	imported, err := rt.client.Import(ctx, r, containerd.WithImportPlatform(platforms.Only(p)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if opts.Tag != "" {
		source, err := selectImage(imported)
		if err != nil {
			return nil, err
		}
		if err := rt.tagImage(ctx, source, opts.Tag); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
		}
		imported = []images.Image{{Name: opts.Tag, Target: source.Target}}
	}

	result := make([]Image, 0, len(imported))
	for _, img := range imported {
		if opts.Unpack {
			if err := rt.unpackImage(ctx, img.Name, platform); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
			}
		}

		slog.Debug("image imported", "name", img.Name, "digest", img.Target.Digest, "multi_platform", images.IsIndexType(img.Target.MediaType))
		result = append(result, summarize(img.Name, img.Target))
	}

	return result, nil
}

// Returns the single image of an import result.
func selectImage(imported []images.Image) (images.Image, error) {
	switch len(imported) {
	case 0:
		return images.Image{}, ErrEmptyArchive
	case 1:
		return imported[0], nil
	default:
		return images.Image{}, fmt.Errorf("%w: %d images, cannot apply a single tag", ErrMultipleImages, len(imported))
	}
}

// Tags an imported image under the given reference.
//
// Updates the tag if it already exists. Removes the source record when
// its name differs from the tag to avoid duplicates.
func (rt *Runtime) tagImage(ctx context.Context, source images.Image, tag string) error {
	is := rt.client.ImageService()

	img := images.Image{
		Name:   tag,
		Target: source.Target,
	}

	if _, err := is.Create(ctx, img); err != nil {
		if !errdefs.IsAlreadyExists(err) {
			return err
		}
		if _, err := is.Update(ctx, img, "target"); err != nil {
			return err
		}
	}

	if source.Name != tag {
		_ = is.Delete(ctx, source.Name)
	}

	return nil
}

// Unpacks the image layers for the target platform into the snapshotter.
func (rt *Runtime) unpackImage(ctx context.Context, name, platform string) error {
	image, err := rt.resolveImage(ctx, name, platform)
	if err != nil {
		return err
	}

	return image.Unpack(ctx, rt.snapshotter)
}

// Looks up an image and selects the manifest for the given platform.
func (rt *Runtime) resolveImage(ctx context.Context, name, platform string) (containerd.Image, error) {
	p, err := platforms.Parse(platform)
	if err != nil {
		return nil, err
	}

	img, err := rt.client.ImageService().Get(ctx, name)
	if err != nil {
		return nil, err
	}

	return containerd.NewImageWithPlatform(rt.client, img, platforms.Only(p)), nil
}

// Builds an [Image] summary from a target descriptor.
func summarize(name string, target ocispec.Descriptor) Image {
	return Image{
		Name:      name,
		Digest:    target.Digest,
		MediaType: target.MediaType,
		Size:      target.Size,
	}
}

// Returns the default OCI platform for the host architecture.
func defaultPlatform() string {
	return "linux/" + goruntime.GOARCH
}
