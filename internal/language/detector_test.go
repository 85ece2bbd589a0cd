package language

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Tag
	}{
		{"empty", "", English},
		{"plain english", "Will it fit on riding boots?", English},
		{"devanagari", "ये क्या है", Hindi},
		{"tamil", "இது என்ன", Tamil},
		{"telugu", "ఇది ఏమిటి", Telugu},
		{"hinglish bhai", "bhai link bhejo", Hindi},
		{"hinglish price", "kitna price hai", Hindi},
		{"uppercase keyword", "BRO DEMO", Hindi},
		{"keyword needs word boundary", "kabir is asking about broth", English},
		{"devanagari beats keywords", "bro नमस्ते", Hindi},
		{"tamil beats hinglish", "bhai இது", Tamil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.text); got != tt.want {
				t.Fatalf("Detect(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectIsTotal(t *testing.T) {
	inputs := []string{"\x00", "\xff\xfe", "🔥🔥🔥", "    ", "?", "₹498"}
	for _, in := range inputs {
		if got := Detect(in); !got.Valid() {
			t.Fatalf("Detect(%q) returned unsupported tag %q", in, got)
		}
	}
}
