package spotify

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Authenticator performs the client credentials grant.
type Authenticator struct {
	cfg clientcredentials.Config
}

func NewAuthenticator(clientID, clientSecret, tokenURL string) *Authenticator {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	return &Authenticator{
		cfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		},
	}
}

func (a *Authenticator) RequestToken(ctx context.Context) (Token, error) {
	tok, err := a.cfg.Token(ctx)
	if err != nil {
		return Token{}, fmt.Errorf("client credentials grant failed: %w", err)
	}

	return Token{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.Expiry,
	}, nil
}
