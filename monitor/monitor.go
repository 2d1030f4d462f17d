package monitor

import (
	"log"
	"time"

	"github.com/BITNewcastle/Monitor-AppleMDMPushCertificate/artifacts"
	"github.com/BITNewcastle/Monitor-AppleMDMPushCertificate/expiry"
	"github.com/BITNewcastle/Monitor-AppleMDMPushCertificate/notifications"
	"github.com/WatchBeam/clock"
)

// Config carries the run parameters supplied by the scheduler.
type Config struct {
	ThresholdDays int
	MailFrom      string
	MailTo        string
	ClientName    string
}

// Result records the outcome of evaluating one artifact, for logging and the
// optional run report.
type Result struct {
	Artifact      artifacts.Artifact
	CheckedAt     time.Time
	Found         bool
	ExpiresAt     time.Time
	DaysRemaining int
	Verdict       expiry.Verdict
	Notified      bool
	Error         error
}

// Run
/**
Evaluates every tracked artifact once: fetch its record, classify its expiry
against the configured threshold, and send a notification if it is expired or
near expiry.

Each artifact is evaluated in isolation - a fetch or parse failure on one is
logged and recorded but never stops the remaining artifacts from being checked,
and a failed notification send is only a warning.  The caller must already hold
an authenticated session; an authentication failure is fatal before this point.

Returns one Result per tracked artifact, in evaluation order.
*/
func Run(client artifacts.Fetcher, sender notifications.Sender, clk clock.Clock, cfg Config) []Result {
	results := make([]Result, 0, len(artifacts.Tracked))

	for _, artifact := range artifacts.Tracked {
		result := evaluateOne(client, sender, clk, cfg, artifact)
		results = append(results, result)
	}

	return results
}

func evaluateOne(client artifacts.Fetcher, sender notifications.Sender, clk clock.Clock, cfg Config, artifact artifacts.Artifact) Result {
	result := Result{
		Artifact:  artifact,
		CheckedAt: clk.Now(),
	}

	record, fetchErr := artifacts.FetchExpiry(client, artifact)
	if fetchErr != nil {
		log.Printf("WARNING Could not evaluate %s: %s", artifact.DisplayName, fetchErr)
		result.Error = fetchErr
		return result
	}
	if record == nil {
		log.Printf("INFO No %s is configured for this tenant, nothing to evaluate", artifact.DisplayName)
		return result
	}

	result.Found = true
	result.ExpiresAt = record.ExpiresAt
	result.DaysRemaining = expiry.DaysRemaining(record.ExpiresAt, clk.Now())
	result.Verdict = expiry.Classify(result.DaysRemaining, cfg.ThresholdDays)

	switch result.Verdict {
	case expiry.Healthy:
		log.Printf("INFO %s is OK, expires %s (%d days)", artifact.DisplayName, record.ExpiresAt.Format("2006-01-02"), result.DaysRemaining)
		return result
	case expiry.NearExpiry:
		log.Printf("WARNING %s is near expiry, expires %s (%d days)", artifact.DisplayName, record.ExpiresAt.Format("2006-01-02"), result.DaysRemaining)
	case expiry.Expired:
		log.Printf("WARNING %s has already expired, expired %s", artifact.DisplayName, record.ExpiresAt.Format("2006-01-02"))
	}

	if cfg.MailTo == "" {
		log.Printf("WARNING Notification for %s suppressed, no recipient is configured", artifact.DisplayName)
		return result
	}

	mail := notifications.Render(artifact, result.Verdict, result.DaysRemaining, cfg.ClientName, cfg.MailFrom, cfg.MailTo)
	if sendErr := sender.Send(mail); sendErr != nil {
		log.Printf("WARNING Could not send notification for %s: %s", artifact.DisplayName, sendErr)
		return result
	}

	log.Printf("INFO Sent notification for %s to %s", artifact.DisplayName, cfg.MailTo)
	result.Notified = true
	return result
}
