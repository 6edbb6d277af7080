package bgx

import "context"

// MatchRider searches historical rider records matching the submitted
// personal data. The result message is always present and explains an
// empty match set.
func (c *Client) MatchRider(ctx context.Context, query MatchQuery) (MatchResult, error) {
	var result MatchResult
	err := c.post(ctx, "/users/match_rider/", query, &result)
	return result, err
}

// ClaimAccount links new credentials to an existing rider record and
// returns a single-use activation code.
func (c *Client) ClaimAccount(ctx context.Context, req ClaimRequest) (ClaimResult, error) {
	var result ClaimResult
	err := c.post(ctx, "/users/claim_account/", req, &result)
	return result, err
}

// Register creates a brand-new account and returns its activation code.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (RegisterResult, error) {
	var result RegisterResult
	err := c.post(ctx, "/users/", req, &result)
	return result, err
}

// Activate redeems a single-use activation code for a token pair plus the
// activated user. A reused code comes back as a normal field error.
func (c *Client) Activate(ctx context.Context, code string) (ActivationResult, error) {
	var result ActivationResult
	err := c.post(ctx, "/users/activate/", map[string]string{"activation_code": code}, &result)
	return result, err
}

// Login exchanges credentials for a token pair. The profile is fetched
// separately via CurrentUser.
func (c *Client) Login(ctx context.Context, username, password string) (TokenPair, error) {
	var pair TokenPair
	err := c.post(ctx, "/auth/login/", map[string]string{
		"username": username,
		"password": password,
	}, &pair)
	return pair, err
}

// CurrentUser loads the profile for the bearer token on the context.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var user User
	err := c.get(ctx, "/users/me/", nil, &user)
	return user, err
}
