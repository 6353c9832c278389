package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

const (
	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	googleUserInfoURL  = "https://openidconnect.googleapis.com/v1/userinfo"
)

var (
	ErrGoogleTokenInvalid  = errors.New("google token is invalid")
	ErrGoogleTokenExpired  = errors.New("google token is expired")
	ErrGoogleWrongAudience = errors.New("google token audience mismatch")
)

// GoogleUserInfo Google 账号信息
type GoogleUserInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleVerifier 验证 Google 登录凭证
type GoogleVerifier struct {
	clientID   string
	httpClient *http.Client
}

// NewGoogleVerifier 创建 Google 凭证验证器
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type tokenInfoResponse struct {
	Aud     string `json:"aud"`
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Exp     string `json:"exp"`
}

// VerifyIDToken 通过 Google tokeninfo 端点验证 ID Token
// 校验 audience 与过期时间
func (v *GoogleVerifier) VerifyIDToken(ctx context.Context, idToken string) (*GoogleUserInfo, error) {
	if idToken == "" {
		return nil, ErrGoogleTokenInvalid
	}

	endpoint := fmt.Sprintf("%s?id_token=%s", googleTokenInfoURL, url.QueryEscape(idToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call tokeninfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrGoogleTokenInvalid
	}

	var info tokenInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}

	if v.clientID != "" && info.Aud != v.clientID {
		return nil, ErrGoogleWrongAudience
	}

	if exp, err := strconv.ParseInt(info.Exp, 10, 64); err == nil {
		if time.Now().Unix() >= exp {
			return nil, ErrGoogleTokenExpired
		}
	}

	if info.Email == "" {
		return nil, ErrGoogleTokenInvalid
	}

	return &GoogleUserInfo{
		Sub:     info.Sub,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}

// FetchUserInfo 使用 OAuth2 Access Token 获取用户信息
// 用于前端走授权码流程、只拿到 access_token 的场景
func (v *GoogleVerifier) FetchUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	if accessToken == "" {
		return nil, ErrGoogleTokenInvalid
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	client := oauth2.NewClient(ctx, ts)
	client.Timeout = 10 * time.Second

	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to call userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrGoogleTokenInvalid
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	if info.Email == "" {
		return nil, ErrGoogleTokenInvalid
	}

	return &info, nil
}
