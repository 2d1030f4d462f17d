package notifications

import (
	"fmt"
	"net/url"
)

// poster is the slice of the management API session that sending mail needs.
type poster interface {
	Post(resourcePath string, body interface{}) error
}

// GraphSender sends notifications through the management tenant's own sendMail
// endpoint, reusing the session that was already authenticated for the run.
type GraphSender struct {
	Session poster
}

type emailAddress struct {
	Address string `json:"address"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type messageBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type message struct {
	Subject      string      `json:"subject"`
	Body         messageBody `json:"body"`
	ToRecipients []recipient `json:"toRecipients"`
}

type sendMailRequest struct {
	Message         message `json:"message"`
	SaveToSentItems bool    `json:"saveToSentItems"`
}

func (g *GraphSender) Send(mail Email) error {
	payload := sendMailRequest{
		Message: message{
			Subject: mail.Subject,
			Body: messageBody{
				ContentType: "Text",
				Content:     mail.Body,
			},
			ToRecipients: []recipient{
				{EmailAddress: emailAddress{Address: mail.To}},
			},
		},
		SaveToSentItems: false,
	}

	sendPath := fmt.Sprintf("users/%s/sendMail", url.PathEscape(mail.From))
	return g.Session.Post(sendPath, payload)
}
