package utils

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/prperemyshlev/notes-service/internal/domain"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// OTPGenerator produces six-digit one-time codes with a fixed validity window
type OTPGenerator struct {
	ttl    time.Duration
	now    func() time.Time
	random io.Reader
}

// NewOTPGenerator creates a generator whose codes stay valid for ttl
func NewOTPGenerator(ttl time.Duration, now func() time.Time) *OTPGenerator {
	if now == nil {
		now = time.Now
	}
	return &OTPGenerator{
		ttl:    ttl,
		now:    now,
		random: rand.Reader,
	}
}

// Issue returns a fresh code sampled uniformly from [100000, 999999]
func (g *OTPGenerator) Issue() (domain.OTP, error) {
	n, err := rand.Int(g.random, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return domain.OTP{}, fmt.Errorf("failed to generate otp: %w", err)
	}

	return domain.OTP{
		Code:      fmt.Sprintf("%06d", n.Int64()+otpMin),
		ExpiresAt: g.now().Add(g.ttl),
	}, nil
}
