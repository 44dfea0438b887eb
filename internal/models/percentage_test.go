package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedIntN int

func (f fixedIntN) IntN(n int) int { return min(int(f), n-1) }

func TestParsePercentage(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		random  bool
		wantErr bool
	}{
		{input: "random", want: "random", random: true},
		{input: " RANDOM ", want: "random", random: true},
		{input: "0", want: "0"},
		{input: "35", want: "35"},
		{input: "100%", want: "100"},
		{input: "101", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "half", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParsePercentage(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
			assert.Equal(t, tt.random, p.IsRandom())
		})
	}
}

func TestPercentageResolve(t *testing.T) {
	assert.Equal(t, 40, FixedPercentage(40).Resolve(fixedIntN(7)))
	assert.Equal(t, 100, FixedPercentage(250).Resolve(nil))
	assert.Equal(t, 0, FixedPercentage(-5).Resolve(nil))

	assert.Equal(t, 20, RandomPercentage().Resolve(fixedIntN(0)))
	assert.Equal(t, 49, RandomPercentage().Resolve(fixedIntN(1000)), "random stays below 50")
}
