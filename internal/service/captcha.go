package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const captchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

var (
	ErrCaptchaRequired = errors.New("captcha response missing")
	ErrCaptchaRejected = errors.New("captcha verification rejected")
)

// CaptchaVerifier checks reCAPTCHA responses server-side. With no keys
// configured the check is disabled and every submission passes, which
// keeps local development and tests free of external calls.
type CaptchaVerifier struct {
	siteKey    string
	secretKey  string
	httpClient *http.Client
}

func NewCaptchaVerifier(siteKey, secretKey string) *CaptchaVerifier {
	return &CaptchaVerifier{
		siteKey:   siteKey,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (v *CaptchaVerifier) Enabled() bool {
	return v.siteKey != "" && v.secretKey != ""
}

// SiteKey is embedded in the registration form.
func (v *CaptchaVerifier) SiteKey() string {
	return v.siteKey
}

// Verify posts the response token to the siteverify endpoint. Network
// failures are logged and treated as a pass so an outage at the
// verifier never blocks registration; an explicit rejection does.
func (v *CaptchaVerifier) Verify(ctx context.Context, response, remoteIP string) error {
	if !v.Enabled() {
		return nil
	}
	if response == "" {
		return ErrCaptchaRequired
	}

	form := url.Values{}
	form.Set("secret", v.secretKey)
	form.Set("response", response)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, captchaVerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		slog.Warn("captcha verification unreachable, allowing submission", "error", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	var result struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		slog.Warn("captcha verification returned malformed body, allowing submission", "error", err)
		return nil
	}

	if !result.Success {
		slog.Info("captcha rejected", "error_codes", result.ErrorCodes)
		return ErrCaptchaRejected
	}
	return nil
}
