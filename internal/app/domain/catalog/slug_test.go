package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Wine Country Escapes", "wine-country-escapes"},
		{"Côte d'Azur", "cote-dazur"},
		{"São Paulo / Rio", "sao-paulo-rio"},
		{"  Hidden   Beaches  ", "hidden-beaches"},
		{"Già-visto_2024", "gia-visto-2024"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}
