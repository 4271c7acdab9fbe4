package component

import (
	"regexp"
	"strings"
	"testing"

	"github.com/pagecraft/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var componentIDRe = regexp.MustCompile(`^comp-\d+-[0-9a-f]{8}$`)

func TestNewComponentIDFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewComponentID()
		if !componentIDRe.MatchString(id) {
			t.Fatalf("id %q does not match comp-<ms>-<hex8>", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestCreateAppliesTypeDefaults(t *testing.T) {
	f := NewFactory()

	tests := []struct {
		typ        models.ComponentType
		wantWidth  float64
		wantHeight float64
		wantProp   string
	}{
		{models.TypeText, 200, 40, "content"},
		{models.TypeTextArea, 300, 120, "lineHeight"},
		{models.TypeImage, 200, 150, "objectFit"},
		{models.TypeButton, 140, 48, "label"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			c := f.Create(tt.typ, models.Position{X: 1, Y: 2}, nil)
			assert.Equal(t, tt.wantWidth, c.Dimensions.Width)
			assert.Equal(t, tt.wantHeight, c.Dimensions.Height)
			assert.Contains(t, c.Props, tt.wantProp)
			assert.Equal(t, models.DefaultConstraints(), c.Constraints)
			assert.Equal(t, 1, c.Metadata.Version)
		})
	}
}

func TestCreateMergesOverrides(t *testing.T) {
	f := NewFactory()
	c := f.Create(models.TypeText, models.Position{}, &CreateOptions{
		Props: map[string]any{"content": "custom", "extra": true},
	})
	assert.Equal(t, "custom", c.Props["content"])
	assert.Equal(t, true, c.Props["extra"])
	// Untouched defaults survive the merge.
	assert.Equal(t, float64(16), c.Props["fontSize"])
}

func TestCreateUnknownTypeStillProducesComponent(t *testing.T) {
	f := NewFactory()
	c := f.Create(models.ComponentType("video"), models.Position{}, nil)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.ID)
	assert.Empty(t, c.Props)
}

func TestFactoryCloneResetsIdentity(t *testing.T) {
	f := NewFactory()
	src := f.Create(models.TypeButton, models.Position{X: 10, Y: 20}, nil)
	src.Metadata.Version = 7

	dup := f.Clone(src)
	require.NotNil(t, dup)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, src.Position.X+CloneOffset, dup.Position.X)
	assert.Equal(t, src.Position.Y+CloneOffset, dup.Position.Y)
	assert.Equal(t, 1, dup.Metadata.Version)

	// Deep copy: prop mutation does not propagate.
	dup.Props["label"] = "copy"
	assert.Equal(t, "Button", src.Props["label"])
}

func TestValidateDefaultsAreClean(t *testing.T) {
	f := NewFactory()
	for _, typ := range models.KnownTypes {
		c := f.Create(typ, models.Position{}, nil)
		res := f.Validate(c)
		if !res.IsValid {
			t.Errorf("%s defaults invalid: %+v", typ, res.Errors)
		}
		// Empty image src is a warning, never an error.
		if typ == models.TypeImage && len(res.Warnings) == 0 {
			t.Error("empty image src should warn")
		}
	}
}

func TestValidateNumericRange(t *testing.T) {
	f := NewFactory()
	c := f.Create(models.TypeText, models.Position{}, nil)

	c.Props["fontSize"] = float64(7)
	res := f.Validate(c)
	assert.False(t, res.IsValid)

	c.Props["fontSize"] = float64(72)
	res = f.Validate(c)
	assert.True(t, res.IsValid)

	c.Props["fontSize"] = "big"
	res = f.Validate(c)
	assert.False(t, res.IsValid)
}

func TestValidateHexColorPattern(t *testing.T) {
	f := NewFactory()
	c := f.Create(models.TypeText, models.Position{}, nil)

	c.Props["color"] = "#GGGGGG"
	res := f.Validate(c)
	require.False(t, res.IsValid)
	found := false
	for _, e := range res.Errors {
		if e.Field == "color" && strings.Contains(e.Message, "pattern") {
			found = true
		}
	}
	assert.True(t, found, "expected a pattern error on color: %+v", res.Errors)

	c.Props["color"] = "#1a2B3c"
	assert.True(t, f.Validate(c).IsValid)
}

func TestValidateEnum(t *testing.T) {
	f := NewFactory()
	c := f.Create(models.TypeImage, models.Position{}, nil)

	c.Props["objectFit"] = "stretch"
	assert.False(t, f.Validate(c).IsValid)

	c.Props["objectFit"] = "contain"
	assert.True(t, f.Validate(c).IsValid)
}

func TestValidateButtonContrastWarning(t *testing.T) {
	f := NewFactory()
	c := f.Create(models.TypeButton, models.Position{}, nil)
	c.Props["textColor"] = c.Props["backgroundColor"]

	res := f.Validate(c)
	// Same colors are legal but warned about.
	assert.True(t, res.IsValid)
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, "backgroundColor", res.Warnings[0].Field)
}

func TestValidateUnknownType(t *testing.T) {
	f := NewFactory()
	c := f.Create(models.ComponentType("video"), models.Position{}, nil)
	res := f.Validate(c)
	assert.False(t, res.IsValid)
}

func TestParseRulesOverride(t *testing.T) {
	const doc = `
types:
  text:
    fontSize:
      min: 10
      max: 40
`
	rs, err := ParseRulesFromReader(strings.NewReader(doc))
	require.NoError(t, err)

	f := NewFactory()
	f.SetRules(DefaultRules().Merge(rs))

	c := f.Create(models.TypeText, models.Position{}, nil)
	c.Props["fontSize"] = float64(60)
	assert.False(t, f.Validate(c).IsValid, "merged override should tighten the range")

	c.Props["fontSize"] = float64(30)
	assert.True(t, f.Validate(c).IsValid)
}
