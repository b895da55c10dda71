package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

var (
	ErrTicketConfig   = errors.New("ticket service is not configured")
	ErrTicketInvalid  = errors.New("seat ticket is invalid")
	ErrTicketMismatch = errors.New("seat ticket is for another match or user")
)

const defaultTicketTTL = 10 * time.Minute

// TicketService issues and verifies signed seat tickets. A ticket binds a user
// to one match so that only players routed by matchmaking can take a seat.
type TicketService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// TicketClaims are the verified contents of a seat ticket.
type TicketClaims struct {
	UserID  string
	MatchID string
	Expires time.Time
}

// NewTicketService constructs a TicketService. ttl <= 0 uses ten minutes.
func NewTicketService(secret, issuer string, ttl time.Duration) *TicketService {
	if ttl <= 0 {
		ttl = defaultTicketTTL
	}
	return &TicketService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Enabled reports whether a secret is configured.
func (s *TicketService) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Issue returns a signed ticket for userID to join matchID.
func (s *TicketService) Issue(userID, matchID string) (string, error) {
	if !s.Enabled() {
		return "", ErrTicketConfig
	}
	if userID == "" || matchID == "" {
		return "", fmt.Errorf("user and match are required")
	}

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": userID,
		"mid": matchID,
		"exp": s.now().Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and expiry of a ticket and that it was issued
// for userID and matchID.
func (s *TicketService) Verify(ticket, userID, matchID string) (TicketClaims, error) {
	if !s.Enabled() {
		return TicketClaims{}, ErrTicketConfig
	}

	token, err := jwt.Parse(ticket, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return TicketClaims{}, fmt.Errorf("%w: %v", ErrTicketInvalid, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return TicketClaims{}, ErrTicketInvalid
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return TicketClaims{}, fmt.Errorf("%w: issuer", ErrTicketInvalid)
	}

	out := TicketClaims{}
	out.UserID, _ = claims["sub"].(string)
	out.MatchID, _ = claims["mid"].(string)
	if exp, ok := claims["exp"].(float64); ok {
		out.Expires = time.Unix(int64(exp), 0)
	}
	if out.UserID != userID || out.MatchID != matchID {
		return out, ErrTicketMismatch
	}
	return out, nil
}
