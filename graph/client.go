package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"strings"

	"gopkg.in/errgo.v2/fmt/errors"
)

// Session is an authenticated handle onto the management API.  It is acquired
// once per run and treated as read-only thereafter.
type Session struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// Get
/**
Fetches the resource at the given path, relative to the API base URL, and returns
the decoded JSON document.

Returns nil with no error if the server reports the resource does not exist (404)
or returns an empty body; callers must treat that as "no record", not a failure.
Any other non-200 status is an error.
*/
func (s *Session) Get(resourcePath string) (map[string]interface{}, error) {
	requestURL := fmt.Sprintf("%s/%s", s.baseURL, strings.TrimPrefix(resourcePath, "/"))

	request, requestErr := http.NewRequest("GET", requestURL, nil)
	if requestErr != nil {
		return nil, requestErr
	}
	request.Header.Set("Authorization", "Bearer "+s.accessToken)
	request.Header.Set("Accept", "application/json")

	response, doErr := s.httpClient.Do(request)
	if doErr != nil {
		return nil, doErr
	}
	defer response.Body.Close()

	rawResponseData, readErr := ioutil.ReadAll(response.Body)
	if readErr != nil {
		return nil, readErr
	}

	if response.StatusCode == 404 {
		log.Printf("INFO Get server has no resource at %s", resourcePath)
		return nil, nil
	}
	if response.StatusCode != 200 {
		return nil, errors.Newf("server responded %d: %s", response.StatusCode, string(rawResponseData))
	}
	if len(bytes.TrimSpace(rawResponseData)) == 0 {
		return nil, nil
	}

	var document map[string]interface{}
	if unmarshalErr := json.Unmarshal(rawResponseData, &document); unmarshalErr != nil {
		return nil, unmarshalErr
	}
	return document, nil
}

// Post sends the given value as a JSON body to the resource at the given path.
// Any 2xx response counts as success.
func (s *Session) Post(resourcePath string, body interface{}) error {
	encodedContent, marshalErr := json.Marshal(body)
	if marshalErr != nil {
		return marshalErr
	}

	requestURL := fmt.Sprintf("%s/%s", s.baseURL, strings.TrimPrefix(resourcePath, "/"))
	request, requestErr := http.NewRequest("POST", requestURL, bytes.NewReader(encodedContent))
	if requestErr != nil {
		return requestErr
	}
	request.Header.Set("Authorization", "Bearer "+s.accessToken)
	request.Header.Set("Content-Type", "application/json")

	response, doErr := s.httpClient.Do(request)
	if doErr != nil {
		return doErr
	}
	defer response.Body.Close()

	rawResponseData, readErr := ioutil.ReadAll(response.Body)
	if readErr != nil {
		return readErr
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return errors.Newf("server responded %d: %s", response.StatusCode, string(rawResponseData))
	}
	return nil
}
