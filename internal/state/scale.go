package state

import (
	"github.com/roach88/sansstate/internal/bag"
	"github.com/roach88/sansstate/internal/instrument"
	"github.com/roach88/sansstate/internal/metadata"
	"github.com/roach88/sansstate/internal/param"
)

// Scale fields.
const (
	ScaleShape             = "shape"
	ScaleThickness         = "thickness"
	ScaleWidth             = "width"
	ScaleHeight            = "height"
	ScaleFactor            = "scale"
	ScaleShapeFromFile     = "shape_from_file"
	ScaleThicknessFromFile = "thickness_from_file"
	ScaleWidthFromFile     = "width_from_file"
	ScaleHeightFromFile    = "height_from_file"
)

var shapes = []string{metadata.ShapeCylinder, metadata.ShapeFlatPlate, metadata.ShapeDisc}

var scaleSchema = param.MustSchema(string(ConcernScale),
	param.NewEnum(ScaleShape, shapes...).Opt(),
	param.NewFloat(ScaleThickness).Opt().Must(param.Positive),
	param.NewFloat(ScaleWidth).Opt().Must(param.Positive),
	param.NewFloat(ScaleHeight).Opt().Must(param.Positive),
	param.NewFloat(ScaleFactor).WithDefault(bag.Float(1)).Must(param.Positive),
	param.NewEnum(ScaleShapeFromFile, shapes...).Derived(),
	param.NewFloat(ScaleThicknessFromFile).Derived().Must(param.Positive),
	param.NewFloat(ScaleWidthFromFile).Derived().Must(param.Positive),
	param.NewFloat(ScaleHeightFromFile).Derived().Must(param.Positive),
)

// Scale holds the absolute scale factor and sample geometry.
type Scale struct {
	base
}

// DecodeScale rehydrates a Scale state.
func DecodeScale(inst instrument.Instrument, b bag.Bag) (*Scale, error) {
	s, err := decodeBase(ConcernScale, inst, scaleSchema, b)
	if err != nil {
		return nil, err
	}
	return &Scale{s}, nil
}

func (s *Scale) Factor() float64 { return s.float(ScaleFactor) }

// Shape returns the user shape, else the shape recorded in the data file.
func (s *Scale) Shape() (string, bool) {
	return s.effectiveString(ScaleShape, ScaleShapeFromFile)
}

// Thickness returns the user thickness, else the recorded one.
func (s *Scale) Thickness() (float64, bool) {
	return s.effective(ScaleThickness, ScaleThicknessFromFile)
}

// Width returns the user width, else the recorded one.
func (s *Scale) Width() (float64, bool) {
	return s.effective(ScaleWidth, ScaleWidthFromFile)
}

// Height returns the user height, else the recorded one.
func (s *Scale) Height() (float64, bool) {
	return s.effective(ScaleHeight, ScaleHeightFromFile)
}

func (s *Scale) effective(user, file string) (float64, bool) {
	if f, ok := s.Float(user); ok {
		return f, true
	}
	return s.Float(file)
}

func (s *Scale) effectiveString(user, file string) (string, bool) {
	if s.Has(user) {
		return s.str(user), true
	}
	if s.Has(file) {
		return s.str(file), true
	}
	return "", false
}

// Validate implements State. Scale has no cross-field rules.
func (s *Scale) Validate() error {
	return s.validate(nil)
}
