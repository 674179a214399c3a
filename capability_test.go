package sconfig

import "testing"

func TestIsValidMaskType(t *testing.T) {
	tests := []struct {
		mt   MaskType
		want bool
	}{
		{MaskSecret, true},
		{MaskEmail, true},
		{MaskCard, true},
		{MaskIP, true},
		{MaskUUID, true},
		{MaskURL, true},
		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mt), func(t *testing.T) {
			if got := IsValidMaskType(tt.mt); got != tt.want {
				t.Errorf("IsValidMaskType(%q) = %v, want %v", tt.mt, got, tt.want)
			}
		})
	}
}

func TestIsValidMaskType_CaseSensitive(t *testing.T) {
	tests := []MaskType{"SECRET", "Email", "URL"}

	for _, mt := range tests {
		t.Run(string(mt), func(t *testing.T) {
			if IsValidMaskType(mt) {
				t.Errorf("IsValidMaskType(%q) = true, want false (case sensitive)", mt)
			}
		})
	}
}

func TestIsValidMaskType_Whitespace(t *testing.T) {
	tests := []MaskType{" secret", "email ", " url "}

	for _, mt := range tests {
		t.Run(string(mt), func(t *testing.T) {
			if IsValidMaskType(mt) {
				t.Errorf("IsValidMaskType(%q) = true, want false (whitespace)", mt)
			}
		})
	}
}

func TestHashAlgoNamesDefaultSerializers(t *testing.T) {
	for _, algo := range []HashAlgo{HashArgon2, HashBcrypt} {
		if _, ok := DefaultSet().NamedSerializer(string(algo)); !ok {
			t.Errorf("default set has no %q serializer", algo)
		}
	}
}
