package param

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sansstate/internal/bag"
)

func TestCheckScalarKinds(t *testing.T) {
	tests := []struct {
		name  string
		p     Param
		in    bag.Value
		want  bag.Value
		fails bool
	}{
		{"bool ok", NewBool("b"), bag.Bool(true), bag.Bool(true), false},
		{"bool from string", NewBool("b"), bag.String("true"), nil, true},
		{"string ok", NewString("s"), bag.String("x"), bag.String("x"), false},
		{"string from int", NewString("s"), bag.Int(1), nil, true},
		{"int ok", NewInt("i"), bag.Int(3), bag.Int(3), false},
		{"int from float", NewInt("i"), bag.Float(3), nil, true},
		{"float ok", NewFloat("f"), bag.Float(1.5), bag.Float(1.5), false},
		{"float widens int", NewFloat("f"), bag.Int(2), bag.Float(2), false},
		{"float from string", NewFloat("f"), bag.String("1.5"), nil, true},
		{"float rejects nan", NewFloat("f"), bag.Float(math.NaN()), nil, true},
		{"float list from scalar", NewFloatList("l"), bag.Float(1), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.p.Check(tt.in)
			if tt.fails {
				require.Error(t, err)
				assert.True(t, IsTypeError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckTypeErrorDescribesField(t *testing.T) {
	_, err := NewFloat("thickness").Check(bag.String("thick"))
	var te *TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "thickness", te.Field)
	assert.Equal(t, "float", te.Expected)
	assert.Equal(t, `string "thick"`, te.Got)
	assert.Contains(t, te.Error(), "thickness")
}

func TestCheckAbsent(t *testing.T) {
	_, err := NewString("required").Check(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")

	v, err := NewString("maybe").Opt().Check(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = NewFloat("scale").WithDefault(bag.Float(1)).Check(nil)
	require.NoError(t, err)
	assert.Equal(t, bag.Float(1), v)
}

func TestCheckFloatRange(t *testing.T) {
	p := NewFloatRange("field")

	v, err := p.Check(bag.Bag{"low": bag.Float(100), "high": bag.Float(200)})
	require.NoError(t, err)
	assert.Equal(t, bag.Bag{"low": bag.Float(100), "high": bag.Float(200)}, v)

	v, err = p.Check(bag.Bag{"low": bag.Int(5), "high": bag.Int(5), "extra": bag.Int(1)})
	require.NoError(t, err)
	assert.Equal(t, bag.Bag{"low": bag.Float(5), "high": bag.Float(5)}, v)

	_, err = p.Check(bag.Bag{"low": bag.Float(200), "high": bag.Float(100)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "low must not exceed high")

	_, err = p.Check(bag.Bag{"low": bag.Float(1)})
	var te *TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "field.high", te.Field)
}

func TestCheckEnumFailsFast(t *testing.T) {
	p := NewEnum("instrument", "SANS2D", "LOQ")

	v, err := p.Check(bag.String("sans2d"))
	require.NoError(t, err)
	assert.Equal(t, bag.String("SANS2D"), v, "canonical spelling")

	_, err = p.Check(bag.String("SANS2E"))
	var te *TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "unknown member", te.Reason)
	assert.Contains(t, te.Expected, "SANS2D, LOQ")
}

func TestCheckEnumList(t *testing.T) {
	p := NewEnumList("file_format", "Nexus", "CanSAS")
	v, err := p.Check(bag.Strings("nexus", "CanSAS"))
	require.NoError(t, err)
	assert.Equal(t, bag.Strings("Nexus", "CanSAS"), v)

	_, err = p.Check(bag.Strings("Nexus", "HDF4"))
	var te *TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "file_format.1", te.Field)
}

func TestCheckCompositeMap(t *testing.T) {
	p := NewCompositeMap("corrections",
		NewFloat("x").WithDefault(bag.Float(0)),
		NewFloat("y").WithDefault(bag.Float(0)),
	)
	v, err := p.Check(bag.Bag{"LAB": bag.Bag{"x": bag.Int(1)}})
	require.NoError(t, err)
	assert.Equal(t, bag.Bag{"LAB": bag.Bag{"x": bag.Float(1), "y": bag.Float(0)}}, v)

	_, err = p.Check(bag.Bag{"LAB": bag.Bag{"x": bag.String("a")}})
	var te *TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "corrections.LAB.x", te.Field)
}

func TestCheckMapKeys(t *testing.T) {
	p := NewStringMap("monitor_names")

	v, err := p.Check(bag.Bag{"0": bag.String("monitor0"), "1": bag.String("monitor1")})
	require.NoError(t, err)
	assert.Equal(t, bag.Bag{"0": bag.String("monitor0"), "1": bag.String("monitor1")}, v,
		"index-like keys stay a map")

	tests := []struct {
		name   string
		key    string
		reason string
	}{
		{"dotted", "m.4", `key "m.4" contains "."`},
		{"empty", "", "empty key"},
		{"invalid utf8", "m\xff", "not valid UTF-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Check(bag.Bag{tt.key: bag.String("monitor4")})
			var te *TypeError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, "monitor_names", te.Field)
			assert.Contains(t, te.Reason, tt.reason)
		})
	}

	cm := NewCompositeMap("corrections", NewFloat("x").WithDefault(bag.Float(0)))
	_, err = cm.Check(bag.Bag{"LAB.x": bag.Bag{}})
	assert.True(t, IsTypeError(err))
}

func TestCheckMapKeysNormalized(t *testing.T) {
	p := NewStringMap("detector_names")
	decomposed := "cafe\u0301"

	v, err := p.Check(bag.Bag{decomposed: bag.String("rear")})
	require.NoError(t, err)
	assert.Equal(t, bag.Bag{"caf\u00e9": bag.String("rear")}, v)

	_, err = p.Check(bag.Bag{decomposed: bag.String("rear"), "caf\u00e9": bag.String("front")})
	var te *TypeError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Reason, "collide")
}

func TestCheckStringsNormalized(t *testing.T) {
	decomposed := bag.String("/data/cafe\u0301/SANS2D00022024.nxs")
	composed := bag.String("/data/caf\u00e9/SANS2D00022024.nxs")

	tests := []struct {
		name string
		p    Param
		in   bag.Value
		want bag.Value
	}{
		{"string", NewString("sample_scatter"), decomposed, composed},
		{"string list", NewStringList("files"), bag.List{decomposed}, bag.List{composed}},
		{"string map", NewStringMap("names"), bag.Bag{"LAB": decomposed}, bag.Bag{"LAB": composed}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.p.Check(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckStringsRejectInvalidUTF8(t *testing.T) {
	bad := bag.String("/data/\xff/SANS2D00022024.nxs")
	for _, p := range []Param{
		NewString("sample_scatter"),
		NewStringList("files"),
		NewStringMap("names"),
		NewEnum("format", "Nexus"),
	} {
		var in bag.Value = bad
		switch p.Kind {
		case StringList:
			in = bag.List{bad}
		case StringMap:
			in = bag.Bag{"LAB": bad}
		}
		_, err := p.Check(in)
		assert.True(t, IsTypeError(err), "%s accepted invalid UTF-8", p.Kind)
	}
}

func TestCheckCompositeListAcceptsIndexedBag(t *testing.T) {
	p := NewCompositeList("intervals", NewFloat("low"), NewFloat("high"))

	v, err := p.Check(bag.Bag{
		"1": bag.Bag{"low": bag.Float(3), "high": bag.Float(4)},
		"0": bag.Bag{"low": bag.Int(1), "high": bag.Float(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, bag.List{
		bag.Bag{"low": bag.Float(1), "high": bag.Float(2)},
		bag.Bag{"low": bag.Float(3), "high": bag.Float(4)},
	}, v)

	_, err = p.Check(bag.Bag{"0": bag.Bag{"low": bag.Float(1), "high": bag.Float(2)}, "2": bag.Bag{}})
	assert.True(t, IsTypeError(err), "gapped indices are not a list")
}

func TestTypeErrorTruncatesOnRuneBoundary(t *testing.T) {
	long := bag.String("x" + strings.Repeat("\u00e9", 40))
	_, err := NewInt("run").Check(long)
	var te *TypeError
	require.ErrorAs(t, err, &te)
	assert.True(t, utf8.ValidString(te.Got), "got %q", te.Got)
	assert.True(t, strings.HasSuffix(te.Got, "..."))
	assert.LessOrEqual(t, len(te.Got), len("string ")+60)
}

func TestCheckReturnsCopy(t *testing.T) {
	in := bag.Floats(1, 2)
	out, err := NewFloatList("l").Check(in)
	require.NoError(t, err)
	in[0] = bag.Float(42)
	assert.Equal(t, bag.Float(1), out.(bag.List)[0])
}

func TestConstraints(t *testing.T) {
	assert.NoError(t, Positive(bag.Float(1)))
	assert.Error(t, Positive(bag.Float(0)))
	assert.Error(t, Positive(bag.Floats(1, -1)))
	assert.NoError(t, NonNegative(bag.Ints(0, 1)))
	assert.Error(t, NonNegative(bag.Int(-1)))
	assert.Error(t, NonEmpty(bag.String("")))
	assert.Error(t, NonEmpty(bag.Bag{"LAB": bag.String("")}))
	assert.Error(t, Unique(bag.Strings("a", "a")))
	assert.NoError(t, Within(-90, 90)(bag.Bag{"low": bag.Float(-90), "high": bag.Float(45)}))
	assert.Error(t, Within(-90, 90)(bag.Bag{"low": bag.Float(-91), "high": bag.Float(45)}))
}
