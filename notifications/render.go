package notifications

import (
	"fmt"

	"github.com/BITNewcastle/Monitor-AppleMDMPushCertificate/artifacts"
	"github.com/BITNewcastle/Monitor-AppleMDMPushCertificate/expiry"
)

// Email is one fully-built notification message.  A fresh value is built for
// every evaluation; nothing is shared or mutated between artifacts.
type Email struct {
	Subject string
	Body    string
	From    string
	To      string
}

// Sender is the mail-send capability consumed by the monitor.
type Sender interface {
	Send(mail Email) error
}

// Render
/**
Builds the notification email for one artifact evaluation.  Pure templating, no
side effects; the same inputs always produce byte-identical subject and body.

`daysRemaining` is only consulted for the NearExpiry verdict.  Must not be called
with a Healthy verdict - a healthy artifact produces no email at all.
*/
func Render(artifact artifacts.Artifact, verdict expiry.Verdict, daysRemaining int, clientName string, mailFrom string, mailTo string) Email {
	var subject, body string
	switch verdict {
	case expiry.Expired:
		subject = fmt.Sprintf("%s has expired - %s", artifact.DisplayName, clientName)
		body = fmt.Sprintf("%s has expired, for client '%s'. Please renew as per documentation:%s",
			artifact.DisplayName, clientName, artifact.DocumentationURL)
	case expiry.NearExpiry:
		subject = fmt.Sprintf("%s expires in %d days - %s", artifact.DisplayName, daysRemaining, clientName)
		body = fmt.Sprintf("%s expires in %d days, for client '%s'. Please renew as per documentation:%s",
			artifact.DisplayName, daysRemaining, clientName, artifact.DocumentationURL)
	}

	return Email{
		Subject: subject,
		Body:    body,
		From:    mailFrom,
		To:      mailTo,
	}
}
