package slackbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clockzy.com/clockzy/clocking"
	"clockzy.com/clockzy/infrastructure/intratime"
	"clockzy.com/clockzy/model"
	"clockzy.com/clockzy/security"
	"clockzy.com/clockzy/store"
	"github.com/go-playground/validator/v10"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// temporaryPasswordLength is the length of /management passwords.
const temporaryPasswordLength = 16

var validate = validator.New()

func (b *Bot) help(ctx context.Context, rc *RequestContext) (*slack.Msg, error) {
	return helpMessage(b.commands), nil
}

func (b *Bot) echo(ctx context.Context, rc *RequestContext) (*slack.Msg, error) {
	return nil, nil
}

func (b *Bot) signUp(ctx context.Context, rc *RequestContext) (*slack.Msg, error) {
	now := rc.Ref.Now.UTC()
	user := &model.User{
		ID:        rc.Command.UserID,
		UserName:  rc.Command.UserName,
		EntryData: &now,
	}

	err := b.dir.CreateUser(ctx, user, b.options.DefaultTimezone)
	switch {
	case errors.Is(err, store.ErrUserExists):
		return ephemeral(errorText(userAlreadyRegistered)), nil
	case err != nil:
		b.logger.Error("failed to create user", zap.Error(err), zap.String("user_id", user.ID))
		return ephemeral(errorText(addUserError)), nil
	}

	b.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("user_name", user.UserName))
	return ephemeral(successText(addUserSuccess)), nil
}

func (b *Bot) deleteUser(ctx context.Context, rc *RequestContext) (*slack.Msg, error) {
	if err := b.dir.DeleteUser(ctx, rc.User.ID); err != nil {
		b.logger.Error("failed to delete user", zap.Error(err), zap.String("user_id", rc.User.ID))
		return ephemeral(errorText(deleteUserError)), nil
	}

	b.logger.Info("user deleted", zap.String("user_id", rc.User.ID))
	return ephemeral(successText(deleteUserSuccess)), nil
}

func (b *Bot) updateUser(ctx context.Context, rc *RequestContext) (*slack.Msg, error) {
	name := strings.Join(rc.Args, " ")
	if name == "" {
		return ephemeral(errorText("You must specify the new user name, e.g. `/update_user jane`")), nil
	}

	if err := b.dir.UpdateUserName(ctx, rc.User.ID, name); err != nil {
		return nil, err
	}
	return ephemeral(successText(updateUserSuccess)), nil
}

func (b *Bot) clock(action clocking.Action) handlerFunc {
	return func(ctx context.Context, rc *RequestContext) (*slack.Msg, error) {
		event, err := b.service.Clock(ctx, rc.User.ID, action, rc.Ref)
		if clocking.IsValidationError(err) {
			return ephemeral(errorText(validationText(err))), nil
		}
		if errors.Is(err, store.ErrDuplicateClock) {
			return ephemeral(errorText(duplicateClock)), nil
		}
		if err != nil {
			return nil, err
		}

		synced, warning := b.syncIntratime(ctx, rc, event)
		msg := clockedMessage(rc.User.UserName, event, rc.Ref, synced)
		if warning != "" {
			msg.Blocks.BlockSet = append(msg.Blocks.BlockSet, section(warning))
		}
		return msg, nil
	}
}

// syncIntratime sends the clocking to Intratime when the user enabled it.
// The local clocking stands whatever Intratime answers.
func (b *Bot) syncIntratime(ctx context.Context, rc *RequestContext, event clocking.ClockEvent) (bool, string) {
	if b.options.Intratime == nil || rc.Config == nil || !rc.Config.IntratimeIntegration {
		return false, ""
	}

	user := rc.User
	if user.Email == nil || user.Password == nil {
		return false, intratimeSyncAuthError
	}

	at := event.Timestamp.In(rc.Ref.Location)
	if event.LocalTimestamp != nil {
		at = *event.LocalTimestamp
	}
	err := b.options.Intratime.Sync(ctx, *user.Email, *user.Password, string(event.Action), at)
	switch {
	case err == nil:
		return true, ""
	case errors.Is(err, intratime.ErrAuthentication):
		b.logger.Warn("intratime rejected the user credentials", zap.String("user_id", user.ID))
		return false, intratimeSyncAuthError
	default:
		b.logger.Error("failed to sync clocking with intratime",
			zap.Error(err),
			zap.String("user_id", user.ID),
			zap.String("action", string(event.Action)))
		if nerr := b.notifier.Error(fmt.Sprintf("Intratime clocking `%s` of user `%s` failed: %v", event.Action.Upper(), user.ID, err)); nerr != nil {
			b.logger.Warn("failed to notify error channel", zap.Error(nerr))
		}
		return false, intratimeSyncError
	}
}

func validationText(err error) string {
	var illegal *clocking.IllegalTransitionError
	if errors.As(err, &illegal) && len(illegal.Allowed) > 0 {
		return fmt.Sprintf("%s. Allowed actions: %s", err.Error(), illegal.AllowedList())
	}
	return err.Error()
}

func (b *Bot) workedTime(ctx context.Context, rc *RequestContext) (*slack.Msg, error) {
	sel, reply := b.rangeArg(rc)
	if reply != nil {
		return reply, nil
	}

	worked, err := b.service.CalculateWorkedTime(ctx, rc.User.ID, clocking.Query{Range: sel}, rc.Ref)
	if err != nil {
		return nil, err
	}
	return workedTimeMessage(sel, worked), nil
}

func (b *Bot) timeHistory(ctx context.Context, rc *RequestContext) (*slack.Msg, error) {
	sel, reply := b.rangeArg(rc)
	if reply != nil {
		return reply, nil
	}

	history, err := b.service.History(ctx, rc.User.ID, sel, rc.Ref)
	if err != nil {
		return nil, err
	}
	return timeHistoryMessage(sel, history, rc.Ref), nil
}

func (b *Bot) clockHistory(ctx context.Context, rc *RequestContext) (*slack.Msg, error) {
	sel, reply := b.rangeArg(rc)
	if reply != nil {
		return reply, nil
	}

	w, err := clocking.ResolveRange(sel, rc.Ref)
	if err != nil {
		return nil, err
	}
	events, err := b.service.ClockHistory(ctx, rc.User.ID, sel, rc.Ref)
	if err != nil {
		return nil, err
	}

	days := clocking.Days(w, rc.Ref.Location, b.options.ExcludeWeekends)
	return clockHistoryMessage(sel, w.From, days, events, rc.Ref), nil
}

func (b *Bot) userStatus(ctx context.Context, rc *RequestContext) (*slack.Msg, error) {
	name := strings.Join(rc.Args, " ")
	if name == "" {
		return ephemeral(errorText("You must specify a user name or alias, e.g. `/user_status jane`")), nil
	}

	user, err := b.dir.FindUserByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return ephemeral(errorText(fmt.Sprintf("The user `%s` does not exist", name))), nil
	}

	last, err := b.service.LastEvent(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return ephemeral(userStatusText(user.UserName, last)), nil
}

func (b *Bot) alias(ctx context.Context, rc *RequestContext) (*slack.Msg, error) {
	if len(rc.Args) == 0 {
		aliases, err := b.dir.ListAliases(ctx)
		if err != nil {
			return nil, err
		}
		return aliasesMessage(aliases), nil
	}

	alias := rc.Args[0]
	err := b.dir.AddAlias(ctx, rc.User.ID, alias)
	if errors.Is(err, store.ErrAliasExists) {
		return ephemeral(errorText(fmt.Sprintf("The alias `%s` is already in use", alias))), nil
	}
	if err != nil {
		return nil, err
	}
	return ephemeral(successText(fmt.Sprintf("The alias `%s` has been added to your user", alias))), nil
}

func (b *Bot) timeZone(ctx context.Context, rc *RequestContext) (*slack.Msg, error) {
	if len(rc.Args) == 0 {
		return ephemeral(successText(fmt.Sprintf("Your time zone is `%s`", rc.Ref.Location))), nil
	}

	zone := rc.Args[0]
	if _, err := time.LoadLocation(zone); err != nil || zone == "Local" {
		return ephemeral(errorText(fmt.Sprintf("Unknown time zone `%s`, e.g. `Europe/Madrid`", zone))), nil
	}

	cfg, err := b.dir.GetUserConfig(ctx, rc.User.ID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &model.UserConfig{UserID: rc.User.ID}
	}
	cfg.TimeZone = zone
	if err := b.dir.SaveUserConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return ephemeral(successText(fmt.Sprintf("Your time zone has been set to `%s`", zone))), nil
}

func (b *Bot) management(ctx context.Context, rc *RequestContext) (*slack.Msg, error) {
	password, err := security.GeneratePassword(temporaryPasswordLength)
	if err != nil {
		return nil, err
	}

	expires := rc.Ref.Now.Add(b.options.CredentialsTTL)
	if err := b.dir.SaveTemporaryCredentials(ctx, rc.User.ID, password, expires); err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Temporary credentials for the web app, valid until %s\n*User*: `%s`\n*Password*: `%s`",
		clocking.FormatTimestamp(expires, rc.Ref.Location), rc.User.ID, password)
	if b.options.WebURL != "" {
		text += "\n*URL*: " + b.options.WebURL
	}
	return ephemeral(successText(text)), nil
}

func (b *Bot) intratimeSettings(ctx context.Context, rc *RequestContext) (*slack.Msg, error) {
	switch {
	case len(rc.Args) == 0:
		state := "disabled"
		if rc.Config != nil && rc.Config.IntratimeIntegration {
			state = "enabled"
		}
		return ephemeral(successText(fmt.Sprintf("The Intratime integration is `%s`. %s", state, intratimeUsage))), nil
	case rc.Args[0] == "enable" && len(rc.Args) == 3:
		return b.enableIntratime(ctx, rc, unwrapMailto(rc.Args[1]), rc.Args[2])
	case rc.Args[0] == "disable" && len(rc.Args) == 1:
		if err := b.saveIntratime(ctx, rc, nil, nil, false); err != nil {
			return nil, err
		}
		b.logger.Info("intratime integration disabled", zap.String("user_id", rc.User.ID))
		return ephemeral(successText(intratimeDisabled)), nil
	}
	return ephemeral(errorText(intratimeUsage)), nil
}

func (b *Bot) enableIntratime(ctx context.Context, rc *RequestContext, email, pin string) (*slack.Msg, error) {
	if err := validate.Var(email, "required,email"); err != nil {
		return ephemeral(errorText(fmt.Sprintf("`%s` is not a valid email address", email))), nil
	}

	ok, err := b.options.Intratime.CheckCredentials(ctx, email, pin)
	if err != nil {
		return nil, err
	}
	if !ok {
		b.logger.Warn("intratime rejected the user credentials", zap.String("user_id", rc.User.ID))
		return ephemeral(errorText(intratimeBadLogin)), nil
	}

	if err := b.saveIntratime(ctx, rc, &email, &pin, true); err != nil {
		return nil, err
	}
	b.logger.Info("intratime integration enabled", zap.String("user_id", rc.User.ID))
	return ephemeral(successText(intratimeEnabled)), nil
}

func (b *Bot) saveIntratime(ctx context.Context, rc *RequestContext, email, pin *string, enabled bool) error {
	if err := b.dir.SetIntratimeCredentials(ctx, rc.User.ID, email, pin); err != nil {
		return err
	}

	cfg := rc.Config
	if cfg == nil {
		cfg = &model.UserConfig{UserID: rc.User.ID, TimeZone: rc.Ref.Location.String()}
	}
	cfg.IntratimeIntegration = enabled
	return b.dir.SaveUserConfig(ctx, cfg)
}

// unwrapMailto turns Slack's <mailto:a@b.c|a@b.c> into a@b.c.
func unwrapMailto(s string) string {
	if !strings.HasPrefix(s, "<mailto:") || !strings.HasSuffix(s, ">") {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "<mailto:"), ">")
	address, _, _ := strings.Cut(s, "|")
	return address
}

// maskCredentials keeps the pin of /intratime enable out of the history.
func maskCredentials(args []string) string {
	if len(args) >= 3 && args[0] == "enable" {
		return strings.Join([]string{args[0], args[1], "****"}, " ")
	}
	return strings.Join(args, " ")
}
