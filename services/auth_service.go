package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mentacrush_server/models"
	"mentacrush_server/repositories"
)

// Session identifies the caller for the lifetime of one request. It is
// resolved from the bearer token by the auth middleware and passed down
// explicitly - there is no ambient global session state.
type Session struct {
	UserID      string
	DisplayName string
}

// AuthService is the identity provider adapter. The provider itself is
// opaque; all this service needs from its tokens is a stable user id.
type AuthService struct {
	Secret     []byte
	Profiles   ProfileStoreDep
	Activities *ActivityService
}

// ProfileStoreDep is the slice of the profile store the adapter needs.
type ProfileStoreDep interface {
	PutProfile(ctx context.Context, profile models.UserProfile) error
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

// ResolveSession validates the bearer token and returns the caller's session.
func (as *AuthService) ResolveSession(ctx context.Context, tokenString string) (Session, error) {
	if tokenString == "" {
		return Session{}, fmt.Errorf("missing bearer token: %w", ErrUnauthenticated)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return as.Secret, nil
	})
	if err != nil || !token.Valid {
		return Session{}, fmt.Errorf("invalid token: %w", ErrUnauthenticated)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, fmt.Errorf("unexpected claims: %w", ErrUnauthenticated)
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return Session{}, fmt.Errorf("token has no subject: %w", ErrUnauthenticated)
	}
	displayName, _ := claims["name"].(string)

	return Session{UserID: userID, DisplayName: displayName}, nil
}

// EnsureProfile creates the user's profile document on first resolution and
// returns it. Subsequent calls return the existing profile untouched.
func (as *AuthService) EnsureProfile(ctx context.Context, session Session) (*models.UserProfile, error) {
	profile, err := as.Profiles.GetProfile(ctx, session.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve profile: %w", err)
	}

	newProfile := models.UserProfile{
		UserID:      session.UserID,
		DisplayName: session.DisplayName,
		CreatedAt:   models.FormatTimestamp(time.Now()),
	}
	if err := as.Profiles.PutProfile(ctx, newProfile); err != nil {
		return nil, fmt.Errorf("failed to create profile for %s: %w", session.UserID, err)
	}
	log.Printf("✅ Profile created for new user %s", session.UserID)

	if as.Activities != nil {
		as.Activities.Record(ctx, session.UserID, session.DisplayName, models.ActivityTypeNewUser, "joined MentaCrush")
	}
	return &newProfile, nil
}
