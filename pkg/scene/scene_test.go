package scene

import (
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-adaptive-raytracer/pkg/core"
	"github.com/df07/go-adaptive-raytracer/pkg/renderer"
	"github.com/stretchr/testify/require"
)

func TestNamesSorted(t *testing.T) {
	require.Equal(t, []string{"cornell", "default", "spheregrid"}, Names())

	infos := List()
	require.Len(t, infos, 3)
	for _, info := range infos {
		require.NotEmpty(t, info.Description, info.Name)
	}
}

func TestNewBuiltInScenes(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s, err := New(name)
			require.NoError(t, err)
			require.Equal(t, name, s.Name)
			require.NotEmpty(t, s.Shapes())
			require.NotEmpty(t, s.Lights())
			require.Greater(t, s.Frame.VFov, 0.0)

			// The camera must see something lit through the center of the image.
			rt := renderer.NewRaytracer(s, renderer.DefaultConfig())
			color := rt.Trace(s.Frame.Ray(50, 50, 100, 100))
			require.False(t, color.IsZero(), "center pixel of %s is black", name)
		})
	}
}

func TestNewUnknownScene(t *testing.T) {
	s, err := New("dragon")
	require.Nil(t, s)
	require.Error(t, err)
	require.Equal(t, ErrTypeUnknownScene, errors.Type(err))
}

func TestGroundQuadFacesUp(t *testing.T) {
	ground := NewGroundQuad(core.NewVec3(0, 0, 0), 10, nil)
	require.InDelta(t, 1.0, ground.Normal.Y, 1e-12)
}

func TestOklchToRGBInRange(t *testing.T) {
	for h := 0.0; h < 360; h += 30 {
		c := oklchToRGB(0.65, 0.25, h)
		for _, v := range []float64{c.X, c.Y, c.Z} {
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 1.0)
		}
	}
	gray := oklchToRGB(0.5, 0, 0)
	require.InDelta(t, gray.X, gray.Y, 1e-6)
	require.InDelta(t, gray.Y, gray.Z, 1e-6)
}
