package domain_test

import (
	"errors"
	"testing"

	"github.com/hyeniworld/loaderkit/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLoaderVariant(t *testing.T) {
	tests := []struct {
		input string
		want  domain.LoaderVariant
	}{
		{"vanilla", domain.VariantVanilla},
		{"fabric", domain.VariantFabric},
		{"NeoForge", domain.VariantNeoForge},
		{" quilt ", domain.VariantQuilt},
		{"forge", domain.VariantForge},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := domain.ParseLoaderVariant(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLoaderVariant_Unknown(t *testing.T) {
	_, err := domain.ParseLoaderVariant("liteloader")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedVariant))
	assert.Contains(t, err.Error(), "liteloader")
}

func TestProgressFunc_ReportNilSafe(t *testing.T) {
	var p domain.ProgressFunc
	assert.NotPanics(t, func() { p.Report("noop", 1, 1) })

	var got []int
	p = func(_ string, current, total int) { got = append(got, current, total) }
	p.Report("step", 2, 3)
	assert.Equal(t, []int{2, 3}, got)
}
