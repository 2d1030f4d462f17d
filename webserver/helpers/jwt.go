package helpers

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/form3tech-oss/jwt-go"
)

/**
pulls the bearer token out of the Authorization header, or returns an error if
there isn't one
*/
func extractAuth(request *http.Request) (string, error) {
	authHeader := request.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("no Authorization header present")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("Authorization header is not a bearer token")
	}
	return parts[1], nil
}

func loadSigningCert(certPath string) (*x509.Certificate, error) {
	certPEM, readErr := ioutil.ReadFile(certPath)
	if readErr != nil {
		return nil, readErr
	}

	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, errors.New("could not decode PEM block from signing cert")
	}
	return x509.ParseCertificate(block.Bytes)
}

// ValidateLogin
/**
validates the bearer token on the given request against the signing certificate
at the given path and returns the username it was issued to.

The token signature must verify against the certificate's public key; expiry and
not-before claims are checked by the jwt library as part of parsing.
*/
func ValidateLogin(request *http.Request, signingCertPath string) (string, error) {
	tokenString, extractErr := extractAuth(request)
	if extractErr != nil {
		return "", extractErr
	}

	signingCert, certErr := loadSigningCert(signingCertPath)
	if certErr != nil {
		return "", certErr
	}

	token, parseErr := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, isRSA := t.Method.(*jwt.SigningMethodRSA); !isRSA {
			return nil, errors.New("token is not RSA-signed")
		}
		return signingCert.PublicKey, nil
	})
	if parseErr != nil {
		return "", parseErr
	}

	claims, haveClaims := token.Claims.(jwt.MapClaims)
	if !haveClaims || !token.Valid {
		return "", errors.New("token is not valid")
	}

	if username, haveUsername := claims["username"].(string); haveUsername {
		return username, nil
	}
	if subject, haveSubject := claims["sub"].(string); haveSubject {
		return subject, nil
	}
	return "", errors.New("token has no username or subject claim")
}
