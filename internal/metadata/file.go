package metadata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sansstate/internal/instrument"
)

// EnvDir names the environment variable holding the parameter directory.
const EnvDir = "SANSSTATE_METADATA_DIR"

// parameterFile is the on-disk parameter document.
type parameterFile struct {
	Instrument string                  `yaml:"instrument" validate:"required"`
	Detectors  map[string]DetectorName `yaml:"detectors" validate:"required,min=1,dive,keys,oneof=LAB HAB,endkeys"`
	Sample     Geometry                `yaml:"sample"`
}

// FileProvider reads instrument parameter files from a directory.
// A file is read once per call; there is no cache, so a provider can be
// shared by concurrently constructed builders.
type FileProvider struct {
	dir      string
	validate *validator.Validate
	logger   *slog.Logger
}

// FileOption configures a FileProvider.
type FileOption func(*FileProvider)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *slog.Logger) FileOption {
	return func(p *FileProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewFileProvider creates a provider rooted at dir.
func NewFileProvider(dir string, opts ...FileOption) *FileProvider {
	p := &FileProvider{
		dir:      dir,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FileProviderFromEnv returns a FileProvider for $SANSSTATE_METADATA_DIR,
// or nil when the variable is unset.
func FileProviderFromEnv(opts ...FileOption) *FileProvider {
	dir := os.Getenv(EnvDir)
	if dir == "" {
		return nil
	}
	return NewFileProvider(dir, opts...)
}

// Path returns the parameter file path for inst.
func (p *FileProvider) Path(inst instrument.Instrument) string {
	return filepath.Join(p.dir, string(inst)+"_Parameters.yaml")
}

// DetectorNames implements Provider.
func (p *FileProvider) DetectorNames(ctx context.Context, h Handle) (map[instrument.Bank]DetectorName, error) {
	doc, err := p.load(ctx, h.Instrument)
	if err != nil {
		return nil, err
	}
	out := make(map[instrument.Bank]DetectorName, len(doc.Detectors))
	for key, name := range doc.Detectors {
		bank, err := instrument.ParseBank(key)
		if err != nil {
			return nil, &Error{Instrument: h.Instrument, Source: p.Path(h.Instrument), Err: err}
		}
		if !h.Instrument.HasBank(bank) {
			return nil, &Error{
				Instrument: h.Instrument,
				Source:     p.Path(h.Instrument),
				Err:        fmt.Errorf("bank %s is not present on %s", bank, h.Instrument),
			}
		}
		out[bank] = name
	}
	return out, nil
}

// SampleGeometry implements Provider.
func (p *FileProvider) SampleGeometry(ctx context.Context, h Handle) (Geometry, error) {
	doc, err := p.load(ctx, h.Instrument)
	if err != nil {
		return Geometry{}, err
	}
	return doc.Sample, nil
}

func (p *FileProvider) load(ctx context.Context, inst instrument.Instrument) (*parameterFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := p.Path(inst)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Instrument: inst, Source: path, Err: err}
	}

	var doc parameterFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, &Error{Instrument: inst, Source: path, Err: fmt.Errorf("parse: %w", err)}
	}
	if err := p.validate.Struct(&doc); err != nil {
		return nil, &Error{Instrument: inst, Source: path, Err: fmt.Errorf("invalid parameter file: %w", err)}
	}
	if !strings.EqualFold(doc.Instrument, string(inst)) {
		return nil, &Error{
			Instrument: inst,
			Source:     path,
			Err:        fmt.Errorf("file describes instrument %q", doc.Instrument),
		}
	}

	p.logger.Debug("loaded instrument parameters",
		"instrument", inst,
		"path", path,
		"banks", len(doc.Detectors),
	)
	return &doc, nil
}
