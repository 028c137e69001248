package hydra

// OIDCContext carries the optional OpenID Connect request context of a login
// request.
type OIDCContext struct {
	AcrValues []string `json:"acr_values,omitempty"`
	Display   string   `json:"display,omitempty"`
	UILocales []string `json:"ui_locales,omitempty"`
	LoginHint string   `json:"login_hint,omitempty"`
}

// OAuth2Client is the OAuth2 client attached to a login request, as the
// admin API reports it.
type OAuth2Client struct {
	ClientID                  string   `json:"client_id"`
	ClientName                string   `json:"client_name,omitempty"`
	RedirectURIs              []string `json:"redirect_uris,omitempty"`
	GrantTypes                []string `json:"grant_types,omitempty"`
	ResponseTypes             []string `json:"response_types,omitempty"`
	Scope                     string   `json:"scope,omitempty"`
	Audience                  []string `json:"audience,omitempty"`
	Owner                     string   `json:"owner,omitempty"`
	PolicyURI                 string   `json:"policy_uri,omitempty"`
	AllowedCORSOrigins        []string `json:"allowed_cors_origins,omitempty"`
	TOSURI                    string   `json:"tos_uri,omitempty"`
	ClientURI                 string   `json:"client_uri,omitempty"`
	LogoURI                   string   `json:"logo_uri,omitempty"`
	Contacts                  []string `json:"contacts,omitempty"`
	SubjectType               string   `json:"subject_type,omitempty"`
	TokenEndpointAuthMethod   string   `json:"token_endpoint_auth_method,omitempty"`
	UserinfoSignedResponseAlg string   `json:"userinfo_signed_response_alg,omitempty"`
	CreatedAt                 string   `json:"created_at,omitempty"`
	UpdatedAt                 string   `json:"updated_at,omitempty"`
}

// LoginRequest is the provider's view of one login attempt, fetched by its
// challenge id.
type LoginRequest struct {
	Challenge                    string       `json:"challenge"`
	Skip                         bool         `json:"skip"`
	Subject                      string       `json:"subject"`
	RequestedScope               []string     `json:"requested_scope,omitempty"`
	RequestedAccessTokenAudience []string     `json:"requested_access_token_audience,omitempty"`
	RequestURL                   string       `json:"request_url,omitempty"`
	SessionID                    string       `json:"session_id,omitempty"`
	OIDCContext                  *OIDCContext `json:"oidc_context,omitempty"`
	Client                       OAuth2Client `json:"client"`
}

// AcceptLoginRequest tells the provider who authenticated and for how long
// the session should be remembered.
type AcceptLoginRequest struct {
	Subject     string `json:"subject"`
	Remember    bool   `json:"remember,omitempty"`
	RememberFor int    `json:"remember_for,omitempty"`
	ACR         string `json:"acr,omitempty"`
}

// RejectLoginRequest tells the provider a login attempt failed.
type RejectLoginRequest struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// CompletedRequest is the provider's answer to an accept or reject call: the
// URL to send the browser to.
type CompletedRequest struct {
	RedirectTo string `json:"redirect_to"`
}
