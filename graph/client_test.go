package graph

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testSession(baseURL string) *Session {
	return &Session{
		baseURL:     baseURL,
		accessToken: "fake-token",
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGetDecodesDocument(t *testing.T) {
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/deviceManagement/applePushNotificationCertificate" {
			t.Errorf("Get hit the wrong path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer fake-token" {
			t.Errorf("Get did not present the bearer token, got '%s'", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"expirationDateTime": "2026-09-30T14:30:00Z",
		})
	}))
	defer apiServer.Close()

	document, getErr := testSession(apiServer.URL).Get("deviceManagement/applePushNotificationCertificate")
	if getErr != nil {
		t.Error("unexpected error from Get: ", getErr)
		t.FailNow()
	}
	if document["expirationDateTime"] != "2026-09-30T14:30:00Z" {
		t.Errorf("Get decoded the wrong document: %v", document)
	}
}

func TestGetNotFoundIsEmpty(t *testing.T) {
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	}))
	defer apiServer.Close()

	document, getErr := testSession(apiServer.URL).Get("deviceManagement/applePushNotificationCertificate")
	if getErr != nil {
		t.Error("a 404 should not be an error, got: ", getErr)
	}
	if document != nil {
		t.Error("a 404 should yield no document")
	}
}

func TestGetEmptyBodyIsEmpty(t *testing.T) {
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer apiServer.Close()

	document, getErr := testSession(apiServer.URL).Get("deviceManagement/depOnboardingSettings")
	if getErr != nil {
		t.Error("an empty body should not be an error, got: ", getErr)
	}
	if document != nil {
		t.Error("an empty body should yield no document")
	}
}

func TestGetServerErrorIsAnError(t *testing.T) {
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		w.Write([]byte("internal error"))
	}))
	defer apiServer.Close()

	_, getErr := testSession(apiServer.URL).Get("deviceAppManagement/vppTokens")
	if getErr == nil {
		t.Error("a server error should be surfaced")
	}
}

func TestPostSendsJsonBody(t *testing.T) {
	var capturedBody []byte
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected a POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("wrong content type: %s", r.Header.Get("Content-Type"))
		}
		capturedBody, _ = ioutil.ReadAll(r.Body)
		w.WriteHeader(202)
	}))
	defer apiServer.Close()

	postErr := testSession(apiServer.URL).Post("users/monitor@example.com/sendMail", map[string]string{"hello": "world"})
	if postErr != nil {
		t.Error("unexpected error from Post: ", postErr)
		t.FailNow()
	}

	var decoded map[string]string
	if unmarshalErr := json.Unmarshal(capturedBody, &decoded); unmarshalErr != nil {
		t.Error(unmarshalErr)
	} else if decoded["hello"] != "world" {
		t.Errorf("Post sent the wrong body: %s", string(capturedBody))
	}
}

func TestPostFailureIsAnError(t *testing.T) {
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(403)
		w.Write([]byte("forbidden"))
	}))
	defer apiServer.Close()

	if postErr := testSession(apiServer.URL).Post("users/monitor@example.com/sendMail", map[string]string{}); postErr == nil {
		t.Error("a rejected POST should be surfaced")
	}
}
