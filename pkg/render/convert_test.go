package render

import (
	"context"
	"testing"

	"github.com/matzehuels/archview/pkg/errors"
)

const tinySVG = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"/>`

func TestToPNG_Scale(t *testing.T) {
	for _, scale := range []float64{0, -1} {
		_, err := ToPNG(context.Background(), []byte(tinySVG), scale)
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("scale %v: err = %v, want INVALID_INPUT", scale, err)
		}
	}
}

func TestConvert_MissingTool(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	tests := []struct {
		name string
		fn   func() ([]byte, error)
	}{
		{"pdf", func() ([]byte, error) { return ToPDF(context.Background(), []byte(tinySVG)) }},
		{"png", func() ([]byte, error) { return ToPNG(context.Background(), []byte(tinySVG), 2) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			if !errors.Is(err, errors.ErrCodeUnsupported) {
				t.Errorf("err = %v, want UNSUPPORTED", err)
			}
		})
	}
}
