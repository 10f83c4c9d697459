package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/learnclub/club-portal-backend/services"
)

// SupabaseAuth gọi GoTrue của Supabase bằng anon key.
type SupabaseAuth struct {
	baseURL string
	anonKey string
	client  *http.Client
}

func NewSupabaseAuth(supabaseURL, anonKey string) *SupabaseAuth {
	return &SupabaseAuth{
		baseURL: strings.TrimRight(supabaseURL, "/"),
		anonKey: anonKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		UserMetadata struct {
			FullName  string `json:"full_name"`
			AvatarURL string `json:"avatar_url"`
		} `json:"user_metadata"`
	} `json:"user"`
}

// ExchangeCode đổi mã PKCE lấy phiên: POST /auth/v1/token?grant_type=pkce
func (a *SupabaseAuth) ExchangeCode(ctx context.Context, code, verifier string) (*services.AuthSession, error) {
	payload, err := json.Marshal(map[string]string{"auth_code": code, "code_verifier": verifier})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/auth/v1/token?grant_type=pkce", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", a.anonKey)
	req.Header.Set("Authorization", "Bearer "+a.anonKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase token exchange: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("supabase token exchange failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	id, err := uuid.Parse(tr.User.ID)
	if err != nil {
		return nil, fmt.Errorf("token response has invalid user id %q", tr.User.ID)
	}
	return &services.AuthSession{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresIn:    tr.ExpiresIn,
		User: services.AuthUser{
			ID:        id,
			Email:     tr.User.Email,
			FullName:  tr.User.UserMetadata.FullName,
			AvatarURL: tr.User.UserMetadata.AvatarURL,
		},
	}, nil
}
