package challenge

import (
	"time"

	"github.com/expromedia/Marx/internal/cache"
)

// Issuer holds the live challenge of every client. Issuing a new challenge
// discards the previous one together with any answer typed against it.
type Issuer struct {
	gen  *Generator
	live *cache.Cache[Challenge]
}

func NewIssuer(gen *Generator, ttl time.Duration) *Issuer {
	return &Issuer{
		gen:  gen,
		live: cache.New[Challenge](ttl),
	}
}

func (i *Issuer) Issue(clientID string) Challenge {
	c := i.gen.Generate()
	i.live.Set(clientID, c)
	return c
}

// Current returns the live challenge, issuing one on first contact.
func (i *Issuer) Current(clientID string) Challenge {
	if c, ok := i.live.Get(clientID); ok {
		return c
	}

	return i.Issue(clientID)
}

// Peek returns the live challenge without issuing.
func (i *Issuer) Peek(clientID string) (Challenge, bool) {
	return i.live.Get(clientID)
}

func (i *Issuer) Check(clientID, input string) bool {
	c, ok := i.live.Get(clientID)
	if !ok {
		return false
	}

	return Matches(input, c.Answer)
}

func (i *Issuer) Forget(clientID string) {
	i.live.Delete(clientID)
}

// Sweep drops expired challenges.
func (i *Issuer) Sweep() int {
	return i.live.Sweep()
}
