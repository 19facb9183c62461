package communication

import (
	"fmt"

	"github.com/slack-go/slack"
)

// Slack posts operational notices to the info and error channels of the
// workspace. A Slack without token or channel silently drops messages.
type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
	// APIURL overrides the Slack Web API endpoint, used by tests.
	APIURL string
}

func NewSlack(token string, options SlackOption) *Slack {
	if token == "" {
		return &Slack{options: options}
	}

	var opts []slack.Option
	if options.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(options.APIURL))
	}
	return &Slack{client: slack.New(token, opts...), options: options}
}

func (s *Slack) postMessage(channelID, message string) error {
	if s == nil || s.client == nil || channelID == "" {
		return nil
	}

	_, _, err := s.client.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(message string) error {
	return s.postMessage(s.options.InfoChannelID, message)
}

func (s *Slack) Error(message string) error {
	return s.postMessage(s.options.ErrorChannelID, message)
}
