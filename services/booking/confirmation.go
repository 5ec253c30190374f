package booking

import (
	"math/rand"
	"regexp"
)

const (
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeDigits  = "0123456789"
)

// ConfirmationCodePattern matches every code produced by a ConfirmationCodeGenerator.
var ConfirmationCodePattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{4}$`)

// ConfirmationCodeGenerator produces human-readable booking references.
type ConfirmationCodeGenerator interface {
	Generate() string
}

// RandomCodeGenerator draws two letters and four digits uniformly at random.
// It keeps no history, so uniqueness has to be enforced by whoever stores the code.
type RandomCodeGenerator struct{}

func NewRandomCodeGenerator() *RandomCodeGenerator {
	return &RandomCodeGenerator{}
}

func (RandomCodeGenerator) Generate() string {
	code := make([]byte, 0, 6)
	for i := 0; i < 2; i++ {
		code = append(code, codeLetters[rand.Intn(len(codeLetters))])
	}
	for i := 0; i < 4; i++ {
		code = append(code, codeDigits[rand.Intn(len(codeDigits))])
	}
	return string(code)
}
