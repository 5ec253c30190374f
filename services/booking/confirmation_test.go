package booking

import "testing"

func TestRandomCodeGenerator_Format(t *testing.T) {
	gen := NewRandomCodeGenerator()
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		code := gen.Generate()
		if !ConfirmationCodePattern.MatchString(code) {
			t.Fatalf("code %q does not match %s", code, ConfirmationCodePattern)
		}
		seen[code] = struct{}{}
	}
	// 6.76M possible codes; 1000 draws should almost never repeat more than a handful.
	if len(seen) < 990 {
		t.Errorf("only %d distinct codes in 1000 draws", len(seen))
	}
}

func TestConfirmationCodePattern(t *testing.T) {
	valid := []string{"AB1234", "ZZ0000"}
	invalid := []string{"ab1234", "A11234", "ABC123", "AB123", "AB12345", " AB1234"}
	for _, c := range valid {
		if !ConfirmationCodePattern.MatchString(c) {
			t.Errorf("%q should match", c)
		}
	}
	for _, c := range invalid {
		if ConfirmationCodePattern.MatchString(c) {
			t.Errorf("%q should not match", c)
		}
	}
}
