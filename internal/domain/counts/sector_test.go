package counts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectorOf(t *testing.T) {
	tests := []struct {
		endereco string
		want     string
	}{
		{"H3C-12", SectorPerishables},
		{" h3c-01 ", SectorPerishables},
		{"h3c", SectorPerishables},
		{"H3B-01", SectorGrocery},
		{"A01-H3C", SectorGrocery},
		{"", SectorGrocery},
		{"   ", SectorGrocery},
	}
	for _, tt := range tests {
		t.Run(tt.endereco, func(t *testing.T) {
			assert.Equal(t, tt.want, SectorOf(tt.endereco))
		})
	}
}
