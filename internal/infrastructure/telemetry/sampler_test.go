package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1.0, "ParentBased{root:AlwaysOnSampler"},
		{0.0, "ParentBased{root:AlwaysOffSampler"},
		{0.25, "ParentBased{root:TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		assert.Contains(t, newSampler(tt.ratio).Description(), tt.want)
	}
}
