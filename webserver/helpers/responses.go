package helpers

import (
	"encoding/json"
	"log"
	"net/http"
)

type GenericErrorResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

/**
serialises the given value as json onto the response with the given status code
*/
func WriteJsonContent(content interface{}, w http.ResponseWriter, statusCode int) {
	encodedContent, marshalErr := json.Marshal(content)
	if marshalErr != nil {
		log.Printf("ERROR WriteJsonContent could not marshal content: %s", marshalErr)
		w.WriteHeader(500)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(encodedContent)
}

/**
checks that the request uses the expected HTTP method.  If not, writes a 405
response and returns false; the caller should stop processing.
*/
func AssertHttpMethod(request *http.Request, w http.ResponseWriter, method string) bool {
	if request.Method == method {
		return true
	}

	response := GenericErrorResponse{
		Status: "error",
		Detail: "method not allowed",
	}
	WriteJsonContent(response, w, 405)
	return false
}
