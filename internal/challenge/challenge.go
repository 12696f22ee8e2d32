// Package challenge produces the arithmetic questions that gate the login form.
package challenge

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

var ErrMalformedQuestion = errors.New("malformed challenge question")

type Challenge struct {
	Question string `json:"question"`
	Answer   int    `json:"-"`
}

// Generator draws challenges from a seeded source. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}

	return &Generator{rng: rand.New(src)}
}

func (g *Generator) Generate() Challenge {
	g.mu.Lock()
	isAddition := g.rng.Float64() > 0.5
	a := g.rng.Intn(15) + 5 // [5,19]
	b := g.rng.Intn(10) + 1 // [1,10]
	g.mu.Unlock()

	if isAddition {
		return Challenge{
			Question: fmt.Sprintf("%d + %d", a, b),
			Answer:   a + b,
		}
	}

	hi, lo := max(a, b), min(a, b)

	return Challenge{
		Question: fmt.Sprintf("%d - %d", hi, lo),
		Answer:   hi - lo,
	}
}

// Evaluate computes the value of a question produced by Generate.
func Evaluate(question string) (int, error) {
	fields := strings.Fields(question)
	if len(fields) != 3 {
		return 0, ErrMalformedQuestion
	}

	left, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedQuestion, fields[0])
	}

	right, err := strconv.Atoi(fields[2])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedQuestion, fields[2])
	}

	switch fields[1] {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	default:
		return 0, fmt.Errorf("%w: operator %q", ErrMalformedQuestion, fields[1])
	}
}

// ParseInteger reads a leading base-10 integer the way a browser's parseInt
// does: leading whitespace and an optional sign are accepted, trailing
// garbage is ignored. ok is false when no digit is found.
func ParseInteger(s string) (n int, ok bool) {
	s = strings.TrimLeft(s, " \t\n\r\f\v")

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}

	if neg {
		v = -v
	}

	return v, true
}

// Matches reports whether input parses to the expected answer.
func Matches(input string, expected int) bool {
	n, ok := ParseInteger(input)
	return ok && n == expected
}
