package slackbot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clockzy.com/clockzy/clocking"
	"clockzy.com/clockzy/model"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// RequestContext carries one slash command request through the checks.
type RequestContext struct {
	Request *http.Request
	Body    []byte
	Command slack.SlashCommand
	Args    []string
	User    *model.User
	Config  *model.UserConfig
	Ref     clocking.Reference
	// Mask renders Args for the command history when they hold secrets.
	Mask func(args []string) string
}

// Check inspects or enriches the request. A non-nil error stops the
// pipeline; a *Rejection carries the answer for Slack.
type Check func(ctx context.Context, rc *RequestContext) error

// Rejection ends a request early with an HTTP status and an optional Slack
// reply.
type Rejection struct {
	Status int
	Reply  *slack.Msg
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

// Run applies checks in order and stops at the first failure.
func Run(ctx context.Context, rc *RequestContext, checks ...Check) error {
	for _, check := range checks {
		if err := check(ctx, rc); err != nil {
			return err
		}
	}
	return nil
}

const (
	nonSlackRequest   = "Unauthorized. Only slack app can use this API."
	badSlackHeaders   = nonSlackRequest + " Missing 'X-Slack-Signature' and 'X-Slack-Request-Timestamp headers'"
	badSlackSignature = nonSlackRequest + " Bad signature"
)

const (
	signatureHeader        = "X-Slack-Signature"
	requestTimestampHeader = "X-Slack-Request-Timestamp"
)

// VerifySignature rejects requests not signed with the app signing secret
// or older than the replay window of the verifier.
func VerifySignature(signingSecret string) Check {
	return func(ctx context.Context, rc *RequestContext) error {
		header := rc.Request.Header
		if header.Get(signatureHeader) == "" || header.Get(requestTimestampHeader) == "" {
			return &Rejection{Status: http.StatusUnauthorized, Reason: badSlackHeaders}
		}

		sv, err := slack.NewSecretsVerifier(header, signingSecret)
		if err != nil {
			return &Rejection{Status: http.StatusUnauthorized, Reason: fmt.Sprintf("%s %v", nonSlackRequest, err)}
		}
		if _, err := sv.Write(rc.Body); err != nil {
			return fmt.Errorf("failed to hash request body: %w", err)
		}
		if err := sv.Ensure(); err != nil {
			return &Rejection{Status: http.StatusUnauthorized, Reason: badSlackSignature}
		}
		return nil
	}
}

// ParseCommand decodes the form payload of the slash command.
func ParseCommand(ctx context.Context, rc *RequestContext) error {
	rc.Request.Body = io.NopCloser(bytes.NewReader(rc.Body))
	cmd, err := slack.SlashCommandParse(rc.Request)
	if err != nil {
		return &Rejection{Status: http.StatusBadRequest, Reason: "malformed slash command"}
	}
	if cmd.UserID == "" || cmd.Command == "" {
		return &Rejection{Status: http.StatusBadRequest, Reason: "malformed slash command"}
	}

	rc.Command = cmd
	rc.Args = strings.Fields(cmd.Text)
	return nil
}

// LoadUser requires a registered user and pins the request time in the
// user's timezone.
func LoadUser(dir Directory, defaultTimezone string, now func() time.Time) Check {
	return func(ctx context.Context, rc *RequestContext) error {
		user, err := dir.FindUser(ctx, rc.Command.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return &Rejection{Status: http.StatusOK, Reply: ephemeral(errorText(userNotRegistered)), Reason: "user not registered"}
		}
		rc.User = user

		tz := defaultTimezone
		cfg, err := dir.GetUserConfig(ctx, user.ID)
		if err != nil {
			return err
		}
		rc.Config = cfg
		if cfg != nil && cfg.TimeZone != "" {
			tz = cfg.TimeZone
		}

		ref, err := clocking.NewReference(now(), tz)
		if err != nil {
			// a broken stored zone must not lock the user out
			ref, err = clocking.NewReference(now(), defaultTimezone)
			if err != nil {
				return err
			}
		}
		rc.Ref = ref
		return nil
	}
}

// RecordCommand appends the command to the user's history. Failures are
// logged and do not stop the request.
func RecordCommand(dir Directory, logger *zap.Logger) Check {
	return func(ctx context.Context, rc *RequestContext) error {
		if rc.User == nil {
			return nil
		}
		parameters := rc.Command.Text
		if rc.Mask != nil {
			parameters = rc.Mask(rc.Args)
		}
		if err := dir.RecordCommand(ctx, rc.User.ID, rc.Command.Command, parameters, rc.Ref.Now); err != nil {
			logger.Warn("failed to record command",
				zap.Error(err),
				zap.String("user_id", rc.User.ID),
				zap.String("command", rc.Command.Command))
		}
		return nil
	}
}
