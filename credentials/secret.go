package credentials

import (
	"context"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/pem"
	"log"

	"github.com/BITNewcastle/Monitor-AppleMDMPushCertificate/graph"
	"gopkg.in/errgo.v2/fmt/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Secret data keys holding the application credential.
const (
	tenantIDKey     = "tenantId"
	clientIDKey     = "clientId"
	clientSecretKey = "clientSecret"
	privateKeyKey   = "privateKey"
	certificateKey  = "certificate"
)

// LoadCredential
/**
Reads the application credential out of the named Secret and returns it in a form
ready for authentication.

The Secret must carry `tenantId` and `clientId`, plus either `clientSecret` or a
PEM `privateKey` together with its registered PEM `certificate` (used only for
its thumbprint).  When both credential forms are present the certificate
credential is preferred.
*/
func LoadCredential(ctx context.Context, clientset kubernetes.Interface, namespace string, secretName string) (*graph.Credential, error) {
	secret, getErr := clientset.CoreV1().Secrets(namespace).Get(ctx, secretName, metav1.GetOptions{})
	if getErr != nil {
		return nil, getErr
	}

	cred := &graph.Credential{
		TenantID:     string(secret.Data[tenantIDKey]),
		ClientID:     string(secret.Data[clientIDKey]),
		ClientSecret: string(secret.Data[clientSecretKey]),
	}
	if cred.TenantID == "" || cred.ClientID == "" {
		return nil, errors.Newf("secret %s/%s is missing %s or %s", namespace, secretName, tenantIDKey, clientIDKey)
	}

	if keyData, haveKey := secret.Data[privateKeyKey]; haveKey {
		privateKey, keyErr := parsePrivateKey(keyData)
		if keyErr != nil {
			return nil, errors.Newf("secret %s/%s has an invalid %s: %s", namespace, secretName, privateKeyKey, keyErr)
		}
		certData, haveCert := secret.Data[certificateKey]
		if !haveCert {
			return nil, errors.Newf("secret %s/%s has a %s but no %s", namespace, secretName, privateKeyKey, certificateKey)
		}
		thumbprint, certErr := certThumbprint(certData)
		if certErr != nil {
			return nil, errors.Newf("secret %s/%s has an invalid %s: %s", namespace, secretName, certificateKey, certErr)
		}
		cred.PrivateKey = privateKey
		cred.CertThumbprint = thumbprint
		log.Printf("INFO LoadCredential using certificate credential for client %s", cred.ClientID)
	} else if cred.ClientSecret == "" {
		return nil, errors.Newf("secret %s/%s has neither %s nor %s", namespace, secretName, clientSecretKey, privateKeyKey)
	}

	return cred, nil
}

func parsePrivateKey(keyPEM []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, errors.New("could not decode PEM block")
	}

	if key, pkcs1Err := x509.ParsePKCS1PrivateKey(block.Bytes); pkcs1Err == nil {
		return key, nil
	}
	parsed, pkcs8Err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if pkcs8Err != nil {
		return nil, pkcs8Err
	}
	rsaKey, isRSA := parsed.(*rsa.PrivateKey)
	if !isRSA {
		return nil, errors.New("private key is not an RSA key")
	}
	return rsaKey, nil
}

func certThumbprint(certPEM []byte) ([]byte, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, errors.New("could not decode PEM block")
	}
	if _, parseErr := x509.ParseCertificate(block.Bytes); parseErr != nil {
		return nil, parseErr
	}
	sum := sha1.Sum(block.Bytes)
	return sum[:], nil
}
