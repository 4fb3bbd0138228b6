package svg

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Napageneral/profilegen/internal/logging"
)

const (
	DefaultWidth  = 36
	DefaultHeight = 54
)

// Options configures one injection run.
type Options struct {
	Target    string
	Source    string
	Output    string // defaults to Target with a .out.svg suffix
	MaxImages int    // 0 means unlimited
	Width     int
	Height    int
	Merge     bool
}

// Result describes a finished injection.
type Result struct {
	Output string
	Images int
	Bytes  int
}

// Injector copies AniList character images between metrics renders.
type Injector struct {
	log logging.Logger
}

// NewInjector returns an Injector logging through log (nil discards).
func NewInjector(log logging.Logger) *Injector {
	return &Injector{log: logging.OrNoOp(log)}
}

// DefaultOutput derives the output path for target.
func DefaultOutput(target string) string {
	return strings.TrimSuffix(target, filepath.Ext(target)) + ".out.svg"
}

func (o Options) normalize() (Options, error) {
	if o.Target == "" {
		return o, errors.New("svg: target path is required")
	}
	if o.Source == "" {
		return o, errors.New("svg: source path is required")
	}
	if o.MaxImages < 0 {
		return o, fmt.Errorf("svg: max images must not be negative, got %d", o.MaxImages)
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Width < 0 || o.Height < 0 {
		return o, fmt.Errorf("svg: image size must be positive, got %dx%d", o.Width, o.Height)
	}
	if o.Output == "" {
		o.Output = DefaultOutput(o.Target)
	}
	return o, nil
}

// Inject extracts data URIs from opts.Source and writes opts.Target with a
// freshly built AniList section to opts.Output.
func (in *Injector) Inject(ctx context.Context, opts Options) (Result, error) {
	opts, err := opts.normalize()
	if err != nil {
		return Result{}, err
	}

	source, err := ReadFile(opts.Source)
	if err != nil {
		return Result{}, err
	}
	uris, err := ExtractDataURIs(source, opts.MaxImages, in.log)
	if err != nil {
		return Result{}, err
	}
	in.log.Info("pulled images from source", "count", len(uris), "source", opts.Source)

	target, err := ReadFile(opts.Target)
	if err != nil {
		return Result{}, err
	}
	fo, err := FindObject(target, opts.Merge)
	if err != nil {
		return Result{}, err
	}

	fo.CreateAttr("x", "0")
	fo.CreateAttr("y", "0")
	fo.CreateAttr("width", "100%")
	fo.CreateAttr("height", "100%")
	BuildSection(fo, uris, opts.Width, opts.Height)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	data, err := WriteFile(target, opts.Output)
	if err != nil {
		return Result{}, err
	}
	in.log.Info("wrote output", "path", opts.Output, "bytes", len(data))

	return Result{Output: opts.Output, Images: len(uris), Bytes: len(data)}, nil
}
