package booking

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"cateringhub/internal/domain/shared/failure"
)

const (
	// DefaultReferencePrefix starts every booking code, e.g. BK-2026-7QX2ME.
	DefaultReferencePrefix = "BK"
	// MaxReferenceAttempts caps the collision retry loop.
	MaxReferenceAttempts = 10

	referenceAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referenceSuffixSize = 6
)

var ErrReferenceExhausted = failure.New(failure.KindReferenceExhausted, "booking: could not allocate a unique reference")

// ReferenceChecker answers whether a reference is already taken.
type ReferenceChecker interface {
	ReferenceExists(ctx context.Context, reference string) (bool, error)
}

// ReferenceGenerator produces PREFIX-YEAR-RANDOM6 codes. The zero value is usable.
type ReferenceGenerator struct {
	Prefix string
	Rand   io.Reader
	Now    func() time.Time
}

// Generate draws candidates until one is free, giving up after MaxReferenceAttempts.
func (g ReferenceGenerator) Generate(ctx context.Context, checker ReferenceChecker) (string, error) {
	if checker == nil {
		return "", failure.Internal(fmt.Errorf("booking: reference checker missing"))
	}
	for attempt := 0; attempt < MaxReferenceAttempts; attempt++ {
		candidate, err := g.Candidate()
		if err != nil {
			return "", ErrReferenceExhausted.Wrap(err)
		}
		taken, err := checker.ReferenceExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrReferenceExhausted
}

// Candidate builds one reference without checking uniqueness.
func (g ReferenceGenerator) Candidate() (string, error) {
	src := g.Rand
	if src == nil {
		src = rand.Reader
	}
	max := big.NewInt(int64(len(referenceAlphabet)))
	var sb strings.Builder
	sb.Grow(referenceSuffixSize)
	for i := 0; i < referenceSuffixSize; i++ {
		n, err := rand.Int(src, max)
		if err != nil {
			return "", fmt.Errorf("reference: entropy read failed: %w", err)
		}
		sb.WriteByte(referenceAlphabet[n.Int64()])
	}
	return fmt.Sprintf("%s-%d-%s", g.prefix(), g.now().Year(), sb.String()), nil
}

func (g ReferenceGenerator) prefix() string {
	p := strings.ToUpper(strings.TrimSpace(g.Prefix))
	if p == "" {
		return DefaultReferencePrefix
	}
	return p
}

func (g ReferenceGenerator) now() time.Time {
	if g.Now != nil {
		return g.Now().UTC()
	}
	return time.Now().UTC()
}
