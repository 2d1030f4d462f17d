package main

import (
	"log"
	"net/http"
	"os"
)

func getRootFromEnviron(key string) string {
	dataRoot := os.Getenv(key)
	if dataRoot == "" {
		log.Fatalf("You must set %s in the environment to a valid path", key)
	}
	statInfo, statErr := os.Stat(dataRoot)
	if statErr != nil {
		log.Fatalf("%s '%s' is not valid: %s", key, dataRoot, statErr)
	}
	if !statInfo.IsDir() {
		log.Fatalf("%s '%s' is not a directory", key, dataRoot)
	}
	return dataRoot
}

func main() {
	dataRoot := getRootFromEnviron("DATA_ROOT")
	signingCertPath := os.Getenv("SIGNING_CERT")
	if signingCertPath == "" {
		log.Print("WARNING SIGNING_CERT is not set, /api/latest is served without authentication")
	}

	dataHandler := DataHandler{
		DataRoot:             dataRoot,
		OAuthSigningCertPath: signingCertPath,
	}
	healthcheck := HealthcheckHandler{}

	http.Handle("/api/latest", dataHandler)
	http.Handle("/healthcheck", healthcheck)

	log.Printf("Starting server on port 9000")
	startServerErr := http.ListenAndServe(":9000", nil)

	if startServerErr != nil {
		log.Fatal(startServerErr)
	}
}
