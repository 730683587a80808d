package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioGateway implements Gateway on the Twilio Messaging API. Template
// sends go through the Content API (ContentSid + ContentVariables); free-form
// sends use a plain body.
type TwilioGateway struct {
	rest *twilio.RestClient
	from string
}

// NewTwilioGateway creates a gateway sending from the given WhatsApp address.
func NewTwilioGateway(accountSID, authToken, from string) *TwilioGateway {
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioGateway{rest: rest, from: from}
}

func (g *TwilioGateway) SendTemplate(ctx context.Context, to, templateID string, vars map[string]string) (*Result, error) {
	encoded, err := json.Marshal(vars)
	if err != nil {
		return nil, fmt.Errorf("encode content variables: %w", err)
	}

	params := &api.CreateMessageParams{}
	params.SetFrom(g.from)
	params.SetTo(to)
	params.SetContentSid(templateID)
	params.SetContentVariables(string(encoded))

	msg, err := g.rest.Api.CreateMessage(params)
	if err != nil {
		return nil, wrapTwilioError(err)
	}
	return resultFromMessage(msg), nil
}

func (g *TwilioGateway) SendText(ctx context.Context, to, body string) (*Result, error) {
	params := &api.CreateMessageParams{}
	params.SetFrom(g.from)
	params.SetTo(to)
	params.SetBody(body)

	msg, err := g.rest.Api.CreateMessage(params)
	if err != nil {
		return nil, wrapTwilioError(err)
	}
	return resultFromMessage(msg), nil
}

// wrapTwilioError converts the REST error into our typed SendError so callers
// can branch on the code without importing the Twilio client.
func wrapTwilioError(err error) error {
	var restErr *client.TwilioRestError
	if errors.As(err, &restErr) {
		return &SendError{Code: restErr.Code, Message: restErr.Message}
	}
	return err
}

func resultFromMessage(msg *api.ApiV2010Message) *Result {
	r := &Result{}
	if msg.Sid != nil {
		r.SID = *msg.Sid
	}
	if msg.Status != nil {
		r.Status = *msg.Status
	}
	return r
}
