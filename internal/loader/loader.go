package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/metadata"
	"github.com/roach88/sansstate/internal/param"
	"github.com/roach88/sansstate/internal/pipeline"
	"github.com/roach88/sansstate/internal/state"
)

// Format is a configuration file format.
type Format string

const (
	FormatCUE  Format = "cue"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", &LoadError{
			File:    path,
			Code:    CodeFormat,
			Message: fmt.Sprintf("unsupported extension %q (want .cue, .yaml, .yml or .json)", filepath.Ext(path)),
		}
	}
}

// Document is a parsed configuration file.
type Document struct {
	File    string
	Request pipeline.Request

	pos positions
}

// Pos returns where the dotted path was written, or the position of its
// nearest parent. The zero Pos means the format records no positions.
func (d *Document) Pos(path string) Pos {
	return d.pos.lookup(path)
}

// Parse reads a document from data. name is used in error messages.
func Parse(name string, format Format, data []byte) (*Document, error) {
	var (
		raw bag.Bag
		ps  positions
		err error
	)
	switch format {
	case FormatCUE:
		raw, ps, err = parseCUE(name, data)
	case FormatYAML:
		raw, ps, err = parseYAML(name, data)
	case FormatJSON:
		raw, ps, err = parseJSON(name, data)
	default:
		return nil, &LoadError{File: name, Code: CodeFormat, Message: fmt.Sprintf("unsupported format %q", format)}
	}
	if err != nil {
		return nil, err
	}
	return newDocument(name, raw, ps)
}

// ReadFile parses the file or CUE package directory at path.
func ReadFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{File: path, Code: CodeRead, Message: err.Error(), Err: err}
	}
	if info.IsDir() {
		raw, ps, err := parseCUEDir(path)
		if err != nil {
			return nil, err
		}
		return newDocument(path, raw, ps)
	}

	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Code: CodeRead, Message: err.Error(), Err: err}
	}
	return Parse(path, format, data)
}

func newDocument(name string, raw bag.Bag, ps positions) (*Document, error) {
	nested, err := bag.Unflatten(raw)
	if err != nil {
		return nil, &LoadError{File: name, Code: CodeShape, Message: err.Error(), Err: err}
	}
	doc := &Document{File: name, pos: ps}

	shapeErr := func(key string, err error) error {
		return &LoadError{File: name, Pos: ps.lookup(key), Code: CodeShape, Message: fmt.Sprintf("%s: %v", key, err), Err: err}
	}

	facility, err := stringKey(nested, pipeline.KeyFacility)
	if err != nil {
		return nil, shapeErr(pipeline.KeyFacility, err)
	}
	inst, err := stringKey(nested, pipeline.KeyInstrument)
	if err != nil {
		return nil, shapeErr(pipeline.KeyInstrument, err)
	}
	if inst == "" {
		return nil, &LoadError{File: name, Code: CodeShape, Message: "missing required key " + pipeline.KeyInstrument}
	}
	req := pipeline.Request{Sections: make(map[state.Concern]bag.Bag)}
	if req.Instrument, err = instrument.ParseInstrument(inst); err != nil {
		return nil, shapeErr(pipeline.KeyInstrument, err)
	}
	// The facility may be omitted; each instrument has exactly one.
	req.Facility = req.Instrument.Facility()
	if facility != "" {
		if req.Facility, err = instrument.ParseFacility(facility); err != nil {
			return nil, shapeErr(pipeline.KeyFacility, err)
		}
	}

	for _, key := range nested.SortedKeys() {
		if key == pipeline.KeyFacility || key == pipeline.KeyInstrument {
			continue
		}
		concern, err := state.ParseConcern(key)
		if err != nil {
			return nil, shapeErr(key, err)
		}
		section, ok := nested[key].(bag.Bag)
		if !ok {
			return nil, shapeErr(key, fmt.Errorf("section must be a mapping, got %s", bag.KindOf(nested[key])))
		}
		req.Sections[concern] = section
	}

	req.Handle = metadata.Handle{Instrument: req.Instrument}
	if data, ok := req.Sections[state.ConcernData]; ok {
		if s, ok := data[state.DataSampleScatter].(bag.String); ok {
			req.Handle.Path = string(s)
		}
	}
	doc.Request = req
	return doc, nil
}

// stringKey returns b[key] as a string, or "" when absent.
func stringKey(b bag.Bag, key string) (string, error) {
	raw, ok := b[key]
	if !ok {
		return "", nil
	}
	s, ok := raw.(bag.String)
	if !ok {
		return "", fmt.Errorf("expected string, got %s", bag.KindOf(raw))
	}
	return string(s), nil
}

// Loader turns configuration files into validated pipeline configurations.
type Loader struct {
	assembler *pipeline.Assembler
	logger    *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

func New(a *pipeline.Assembler, opts ...Option) *Loader {
	ld := &Loader{
		assembler: a,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// LoadFile reads, assembles and validates the configuration at path.
//
// A value rejected by a builder is reported as a *LoadError positioned at
// the offending key. A configuration that assembles but fails validation
// is returned as the *pipeline.ValidationError.
func (ld *Loader) LoadFile(ctx context.Context, path string) (*pipeline.Config, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ld.Load(ctx, doc)
}

// Load assembles a parsed document.
func (ld *Loader) Load(ctx context.Context, doc *Document) (*pipeline.Config, error) {
	ld.logger.Debug("loading configuration",
		"file", doc.File,
		"instrument", doc.Request.Instrument,
		"sections", len(doc.Request.Sections),
	)
	cfg, err := ld.assembler.Assemble(ctx, doc.Request)
	if err != nil {
		return nil, ld.locate(doc, err)
	}
	return cfg, nil
}

// locate positions a rejected section value in the source file.
func (ld *Loader) locate(doc *Document, err error) error {
	var se *pipeline.SectionError
	if !errors.As(err, &se) {
		return err
	}
	path := string(se.Concern)
	var te *param.TypeError
	if errors.As(err, &te) {
		path = join(path, te.Field)
	}
	le := &LoadError{File: doc.File, Pos: doc.Pos(path), Code: CodeRejected, Message: err.Error(), Err: err}
	ld.logger.Warn("configuration value rejected",
		"file", doc.File,
		"path", path,
		"error", se.Err,
	)
	return le
}
