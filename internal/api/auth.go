package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/felixgeelhaar/authdemo/internal/errors"
	"github.com/felixgeelhaar/authdemo/internal/session"
)

// TokenResponse is the body returned by /token and /refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterRequest is the JSON body of /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account. Any 2xx is success.
func (c *Client) Register(ctx context.Context, username, password string) error {
	body, err := jsonBody(RegisterRequest{Username: username, Password: password})
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, request{
		operation:   "register",
		method:      http.MethodPost,
		path:        "/register",
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		return err
	}
	if !resp.ok() {
		return apiError(resp, FallbackRegister)
	}
	return nil
}

// Login exchanges credentials for tokens using a form-encoded body.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := c.do(ctx, request{
		operation:   "login",
		method:      http.MethodPost,
		path:        "/token",
		body:        formBody(form),
		contentType: "application/x-www-form-urlencoded",
	})
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, apiError(resp, FallbackLogin)
	}
	return decodeTokens(resp, FallbackLogin)
}

// Refresh obtains a new token pair with the refresh token as bearer.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := c.do(ctx, request{
		operation:   "refresh",
		method:      http.MethodPost,
		path:        "/refresh",
		contentType: "application/json",
		bearer:      refreshToken,
	})
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, apiError(resp, FallbackRefresh)
	}
	return decodeTokens(resp, FallbackRefresh)
}

// CurrentUser fetches the profile of the access token's owner.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*session.User, error) {
	resp, err := c.do(ctx, request{
		operation: "current_user",
		method:    http.MethodGet,
		path:      "/users/me",
		bearer:    accessToken,
	})
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, apiError(resp, FallbackCurrentUser)
	}

	var user session.User
	if err := json.Unmarshal(resp.body, &user); err != nil {
		e := errors.Wrap(errors.KindAPI, errors.ErrCodeAPIDecode, FallbackCurrentUser, err)
		e.Status = resp.status
		return nil, e
	}
	return &user, nil
}

func decodeTokens(resp *response, fallback string) (*TokenResponse, error) {
	var tokens TokenResponse
	err := json.Unmarshal(resp.body, &tokens)
	if err == nil && tokens.AccessToken == "" {
		err = errMissingAccessToken
	}
	if err != nil {
		e := errors.Wrap(errors.KindAPI, errors.ErrCodeAPIDecode, fallback, err)
		e.Status = resp.status
		return nil, e
	}
	return &tokens, nil
}

var errMissingAccessToken = fmt.Errorf("response has no access_token")
