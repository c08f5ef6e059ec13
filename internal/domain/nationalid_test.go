package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidNationalID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "valid digits only", in: "52998224725", want: true},
		{name: "valid formatted", in: "529.982.247-25", want: true},
		{name: "valid with zero check digit", in: "98765432100", want: true},
		{name: "wrong second check digit", in: "52998224724", want: false},
		{name: "repeated digits", in: "11111111111", want: false},
		{name: "too short", in: "5299822472", want: false},
		{name: "too long", in: "529982247251", want: false},
		{name: "empty", in: "", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValidNationalID(tc.in))
		})
	}
}

func TestParseNationalIDKey(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{name: "formatted cpf", in: "111.444.777-35", want: "11144477735", wantOK: true},
		{name: "surrounding whitespace", in: "  11144477735 ", want: "11144477735", wantOK: true},
		{name: "email key", in: "maria@example.com", wantOK: false},
		{name: "phone key", in: "+5511999998888", wantOK: false},
		{name: "random key", in: "7d9f1c2a-0000-4000-8000-000000000000", wantOK: false},
		{name: "invalid checksum", in: "111.444.777-36", wantOK: false},
		{name: "blank", in: "   ", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseNationalIDKey(tc.in)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatNationalID(t *testing.T) {
	assert.Equal(t, "529.982.247-25", FormatNationalID("52998224725"))
	assert.Equal(t, "123", FormatNationalID("123"))
}
