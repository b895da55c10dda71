package app

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

func TestTicketServiceIssueAndVerify(t *testing.T) {
	svc := NewTicketService("test-secret", "ringo", time.Minute)
	ticket, err := svc.Issue("user123", "match-456")
	if err != nil {
		t.Fatalf("issue ticket error: %v", err)
	}

	claims := parseTicketClaims(t, ticket, "test-secret")
	if got := stringClaim(t, claims, "sub"); got != "user123" {
		t.Fatalf("sub = %s, want user123", got)
	}
	if got := stringClaim(t, claims, "mid"); got != "match-456" {
		t.Fatalf("mid = %s, want match-456", got)
	}

	verified, err := svc.Verify(ticket, "user123", "match-456")
	if err != nil {
		t.Fatalf("verify ticket error: %v", err)
	}
	if verified.UserID != "user123" || verified.MatchID != "match-456" {
		t.Fatalf("claims = %+v", verified)
	}
}

func TestTicketServiceRejectsOtherMatch(t *testing.T) {
	svc := NewTicketService("test-secret", "ringo", time.Minute)
	ticket, err := svc.Issue("user123", "match-456")
	if err != nil {
		t.Fatalf("issue ticket error: %v", err)
	}
	if _, err := svc.Verify(ticket, "user123", "match-789"); !errors.Is(err, ErrTicketMismatch) {
		t.Fatalf("err = %v, want mismatch", err)
	}
	if _, err := svc.Verify(ticket, "someone", "match-456"); !errors.Is(err, ErrTicketMismatch) {
		t.Fatalf("err = %v, want mismatch", err)
	}
}

func TestTicketServiceRejectsWrongSecret(t *testing.T) {
	ticket, err := NewTicketService("secret-a", "ringo", time.Minute).Issue("u", "m")
	if err != nil {
		t.Fatalf("issue ticket error: %v", err)
	}
	if _, err := NewTicketService("secret-b", "ringo", time.Minute).Verify(ticket, "u", "m"); !errors.Is(err, ErrTicketInvalid) {
		t.Fatalf("err = %v, want invalid", err)
	}
}

func TestTicketServiceRejectsExpired(t *testing.T) {
	svc := NewTicketService("test-secret", "ringo", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	ticket, err := svc.Issue("u", "m")
	if err != nil {
		t.Fatalf("issue ticket error: %v", err)
	}
	svc.now = time.Now
	if _, err := svc.Verify(ticket, "u", "m"); !errors.Is(err, ErrTicketInvalid) {
		t.Fatalf("err = %v, want invalid", err)
	}
}

func TestTicketServiceRequiresConfig(t *testing.T) {
	svc := NewTicketService("", "ringo", 0)
	if svc.Enabled() {
		t.Fatal("service without secret should be disabled")
	}
	if _, err := svc.Issue("u", "m"); !errors.Is(err, ErrTicketConfig) {
		t.Fatalf("err = %v, want config error", err)
	}
}

func parseTicketClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	if !token.Valid {
		t.Fatal("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not map claims")
	}
	return claims
}

func stringClaim(t *testing.T, claims jwt.MapClaims, name string) string {
	t.Helper()
	value, ok := claims[name]
	if !ok {
		t.Fatalf("missing %s claim", name)
	}
	str, ok := value.(string)
	if !ok {
		t.Fatalf("%s claim is not a string", name)
	}
	return str
}
