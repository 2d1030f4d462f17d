package artifacts

import (
	"log"
	"time"

	"gopkg.in/errgo.v2/fmt/errors"
)

// Fetcher is the resource-fetch capability of an authenticated management API
// session.  A nil document with a nil error means the resource exists but holds
// no record.
type Fetcher interface {
	Get(resourcePath string) (map[string]interface{}, error)
}

// ExpiryRecord is the outcome of successfully fetching one artifact: the
// artifact it belongs to and the expiry timestamp extracted from it.
type ExpiryRecord struct {
	Artifact  Artifact
	ExpiresAt time.Time
}

// FetchExpiry
/**
Fetches the current record for the given artifact through the provided session and
extracts its expiry timestamp.

Returns nil with no error when the tenant has no record for this artifact; that is
a valid "nothing to evaluate" outcome, not a failure.  Returns an error when the
fetch itself fails, or when a record is present but its expiry field is missing or
does not parse under the artifact's expected date format.  A bad timestamp is
never silently replaced with a default.
*/
func FetchExpiry(client Fetcher, artifact Artifact) (*ExpiryRecord, error) {
	document, fetchErr := client.Get(artifact.ResourcePath)
	if fetchErr != nil {
		return nil, fetchErr
	}
	if document == nil {
		return nil, nil
	}

	record := document
	if artifact.Wrapped {
		wrapped, haveWrapper := document["value"]
		if !haveWrapper {
			return nil, nil
		}
		entries, isList := wrapped.([]interface{})
		if !isList || len(entries) == 0 {
			return nil, nil
		}
		if len(entries) > 1 {
			log.Printf("INFO FetchExpiry %s has %d records, evaluating the first", artifact.Kind, len(entries))
		}
		entry, isMap := entries[0].(map[string]interface{})
		if !isMap {
			return nil, errors.Newf("%s record has an unexpected shape", artifact.Kind)
		}
		record = entry
	}

	rawValue, haveField := record[artifact.ExpiryField]
	if !haveField {
		return nil, errors.Newf("%s record has no %s field", artifact.Kind, artifact.ExpiryField)
	}
	stringValue, isString := rawValue.(string)
	if !isString {
		return nil, errors.Newf("%s field %s is not a string", artifact.Kind, artifact.ExpiryField)
	}

	expiresAt, parseErr := parseExpiry(stringValue, artifact.DateLayouts)
	if parseErr != nil {
		return nil, errors.Newf("could not parse %s expiry '%s': %s", artifact.Kind, stringValue, parseErr)
	}

	return &ExpiryRecord{Artifact: artifact, ExpiresAt: expiresAt}, nil
}

// The source timestamps are timezone-naive and get compared against a local
// "now", so naive layouts are interpreted in local time.
func parseExpiry(value string, layouts []string) (time.Time, error) {
	var lastErr error
	for _, layout := range layouts {
		parsed, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
