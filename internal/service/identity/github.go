package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

type githubProvider struct {
	config *oauth2.Config
}

func NewGitHub(clientID, clientSecret, appURL string) Provider {
	return &githubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  appURL + "/auth/github/callback",
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
	}
}

func (p *githubProvider) Name() string {
	return "github"
}

func (p *githubProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *githubProvider) Profile(ctx context.Context, code string) (*Profile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github token exchange failed: %w", err)
	}

	client := p.config.Client(ctx, token)
	resp, err := client.Get(githubUserURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get github user info: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var userInfo struct {
		ID        int64  `json:"id"`
		Email     string `json:"email"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	err = json.NewDecoder(resp.Body).Decode(&userInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to decode github user info: %w", err)
	}

	// GitHub omits the email in the main response when it is private;
	// fetch the primary address separately.
	if userInfo.Email == "" {
		userInfo.Email, err = p.primaryEmail(client)
		if err != nil {
			return nil, err
		}
	}

	profile := &Profile{
		Subject: strconv.FormatInt(userInfo.ID, 10),
		Email:   userInfo.Email,
		Name:    userInfo.Name,
		Picture: userInfo.AvatarURL,
	}
	if userInfo.ID == 0 {
		profile.Subject = ""
	}
	err = profile.Validate()
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (p *githubProvider) primaryEmail(client *http.Client) (string, error) {
	resp, err := client.Get(githubEmailsURL)
	if err != nil {
		return "", fmt.Errorf("failed to get github emails: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	err = json.NewDecoder(resp.Body).Decode(&emails)
	if err != nil {
		return "", fmt.Errorf("failed to decode github emails: %w", err)
	}

	for _, e := range emails {
		if e.Primary {
			return e.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", nil
}
