package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "thousand suffix rb",
			input: "makan 50rb",
			want:  "makan 50000",
		},
		{
			name:  "thousand suffix k",
			input: "kopi 15k",
			want:  "kopi 15000",
		},
		{
			name:  "million suffix jt",
			input: "laptop 5jt",
			want:  "laptop 5000000",
		},
		{
			name:  "decimal million base",
			input: "kopi 2.5jt",
			want:  "kopi 2500000",
		},
		{
			name:  "comma decimal unified before suffix",
			input: "bayar 1,5jt",
			want:  "bayar 1500000",
		},
		{
			name:  "spelled out juta",
			input: "gaji 10 juta",
			want:  "gaji 10000000",
		},
		{
			name:  "spelled out ribu",
			input: "parkir 5 ribu",
			want:  "parkir 5000",
		},
		{
			name:  "currency noise stripped",
			input: "bayar Rp 50000",
			want:  "bayar 50000",
		},
		{
			name:  "currency prefix without space",
			input: "total rp50000",
			want:  "total 50000",
		},
		{
			name:  "no shorthand untouched",
			input: "beli sayur 25000",
			want:  "beli sayur 25000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"rb suffix", "makan 50rb", 50000},
		{"k suffix", "ngopi 15k", 15000},
		{"ribu suffix", "parkir 5 ribu", 5000},
		{"rebu suffix", "bakso 12rebu", 12000},
		{"jt suffix", "sewa kost 2jt", 2000000},
		{"mio suffix", "bonus 1mio", 1000000},
		{"juta suffix", "gaji 10 juta", 10000000},
		{"decimal million", "kopi 2.5jt", 2500000},
		{"comma decimal million", "tv 1,5jt", 1500000},
		{"plain number", "makan siang 50000", 50000},
		{"thousands separators", "belanja 1.250.000", 1250000},
		{"rightmost candidate wins", "transfer 200000 lalu makan 50000", 50000},
		{"small trailing number does not shadow", "bayar 50000 untuk 2 orang", 50000},
		{"below minimum is not monetary", "beli 2 permen", 0},
		{"no numbers at all", "halo apa kabar", 0},
		{"exactly at minimum", "parkir 100", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ExtractAmount(tt.input), 0.001)
		})
	}
}
