package graph

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
	"gopkg.in/errgo.v2/fmt/errors"
)

const DefaultBaseURL = "https://graph.microsoft.com/v1.0"
const DefaultLoginBaseURL = "https://login.microsoftonline.com"

// Every network call gets a fixed bound so a stuck endpoint can't hang the run
// past the scheduler's cycle.
const requestTimeout = 30 * time.Second

// Credential is the application identity used to authenticate to the management
// tenant.  Either ClientSecret or PrivateKey+CertThumbprint must be populated;
// when both are present the private key wins.
type Credential struct {
	TenantID     string
	ClientID     string
	ClientSecret string

	//certificate credential: RS256 client-assertion signing key and the SHA-1
	//thumbprint of the registered certificate
	PrivateKey     *rsa.PrivateKey
	CertThumbprint []byte
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Authenticate
/**
Performs a client-credentials token exchange against the identity platform and
returns an authenticated Session for the management API, or an error if the
exchange failed.  The credential is ambient (loaded from the environment by the
caller); nothing is prompted for.
*/
func Authenticate(cred *Credential) (*Session, error) {
	return AuthenticateAgainst(cred, DefaultLoginBaseURL, DefaultBaseURL)
}

// AuthenticateAgainst is Authenticate with explicit endpoint base URLs, so tests
// can point the exchange at a local server.
func AuthenticateAgainst(cred *Credential, loginBaseURL string, apiBaseURL string) (*Session, error) {
	if cred.TenantID == "" || cred.ClientID == "" {
		return nil, errors.New("credential is missing a tenant or client ID")
	}

	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", loginBaseURL, cred.TenantID)
	scope := strings.TrimSuffix(apiBaseURL, "/v1.0") + "/.default"

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", cred.ClientID)
	form.Set("scope", scope)

	switch {
	case cred.PrivateKey != nil:
		assertion, assertionErr := buildClientAssertion(cred, tokenURL)
		if assertionErr != nil {
			return nil, assertionErr
		}
		form.Set("client_assertion_type", "urn:ietf:params:oauth:client-assertion-type:jwt-bearer")
		form.Set("client_assertion", assertion)
	case cred.ClientSecret != "":
		form.Set("client_secret", cred.ClientSecret)
	default:
		return nil, errors.New("credential has neither a client secret nor a private key")
	}

	httpClient := &http.Client{Timeout: requestTimeout}
	response, postErr := httpClient.PostForm(tokenURL, form)
	if postErr != nil {
		return nil, postErr
	}
	defer response.Body.Close()

	rawResponseData, readErr := ioutil.ReadAll(response.Body)
	if readErr != nil {
		return nil, readErr
	}

	if response.StatusCode != 200 {
		return nil, errors.Newf("token endpoint responded %d: %s", response.StatusCode, string(rawResponseData))
	}

	var token tokenResponse
	if unmarshalErr := json.Unmarshal(rawResponseData, &token); unmarshalErr != nil {
		return nil, unmarshalErr
	}
	if token.AccessToken == "" {
		return nil, errors.New("token endpoint returned no access token")
	}

	log.Printf("INFO Authenticate got a token for client %s, valid for %d seconds", cred.ClientID, token.ExpiresIn)

	return &Session{
		baseURL:     strings.TrimSuffix(apiBaseURL, "/"),
		accessToken: token.AccessToken,
		httpClient:  httpClient,
	}, nil
}

/**
builds the signed JWT presented as a client assertion when authenticating with a
certificate credential.  The x5t header carries the base64url SHA-1 thumbprint of
the registered certificate so the identity platform can locate the public key.
*/
func buildClientAssertion(cred *Credential, tokenURL string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"aud": tokenURL,
		"iss": cred.ClientID,
		"sub": cred.ClientID,
		"jti": uuid.New().String(),
		"nbf": now.Unix(),
		"iat": now.Unix(),
		"exp": now.Add(10 * time.Minute).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if len(cred.CertThumbprint) > 0 {
		token.Header["x5t"] = base64.RawURLEncoding.EncodeToString(cred.CertThumbprint)
	}

	return token.SignedString(cred.PrivateKey)
}
