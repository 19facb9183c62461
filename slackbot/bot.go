package slackbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"clockzy.com/clockzy/clocking"
	"clockzy.com/clockzy/model"
	"clockzy.com/clockzy/store"
	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// maxBodySize bounds the form payload of a slash command.
const maxBodySize = 1 << 20

// Directory is the user side of the store the bot needs.
type Directory interface {
	FindUser(ctx context.Context, id string) (*model.User, error)
	FindUserByName(ctx context.Context, name string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User, timezone string) error
	DeleteUser(ctx context.Context, id string) error
	UpdateUserName(ctx context.Context, id, name string) error
	GetUserConfig(ctx context.Context, userID string) (*model.UserConfig, error)
	SaveUserConfig(ctx context.Context, cfg *model.UserConfig) error
	AddAlias(ctx context.Context, userID, alias string) error
	ListAliases(ctx context.Context) ([]store.UserAliases, error)
	RecordCommand(ctx context.Context, userID, command, parameters string, at time.Time) error
	SaveTemporaryCredentials(ctx context.Context, userID, password string, expires time.Time) error
	SetIntratimeCredentials(ctx context.Context, id string, email, pin *string) error
}

// Intratime mirrors clockings to the Intratime time tracking service.
type Intratime interface {
	CheckCredentials(ctx context.Context, email, pin string) (bool, error)
	Sync(ctx context.Context, email, pin, action string, at time.Time) error
}

// Notifier reports failures to the operators.
type Notifier interface {
	Error(message string) error
}

type Options struct {
	SigningSecret   string
	DefaultTimezone string
	ExcludeWeekends bool
	// CredentialsTTL is how long a /management password stays valid.
	CredentialsTTL time.Duration
	// WebURL is shown next to the temporary credentials.
	WebURL string
	// Intratime enables the /intratime command when set.
	Intratime Intratime
	Now       func() time.Time
}

type handlerFunc func(ctx context.Context, rc *RequestContext) (*slack.Msg, error)

type command struct {
	name        string
	usage       string
	description string
	// registered commands need a signed up user
	registered bool
	run        handlerFunc
	mask       func(args []string) string
}

// Bot answers the slash commands of the clockzy Slack app.
type Bot struct {
	dir      Directory
	service  *clocking.Service
	notifier Notifier
	logger   *zap.Logger
	options  Options

	commands []*command
	byName   map[string]*command
	base     []Check
	user     []Check
}

func New(dir Directory, service *clocking.Service, notifier Notifier, logger *zap.Logger, options Options) *Bot {
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.DefaultTimezone == "" {
		options.DefaultTimezone = clocking.DefaultTimezone
	}

	b := &Bot{
		dir:      dir,
		service:  service,
		notifier: notifier,
		logger:   logger,
		options:  options,
		byName:   make(map[string]*command),
	}
	b.base = []Check{VerifySignature(options.SigningSecret), ParseCommand, b.defaultReference}
	b.user = []Check{LoadUser(dir, options.DefaultTimezone, options.Now), RecordCommand(dir, logger)}

	b.commands = []*command{
		{name: "/help", description: "Show this help", run: b.help},
		{name: "/echo", description: "Check that the app is alive", registered: true, run: b.echo},
		{name: "/sign_up", description: "Register your user in the app", run: b.signUp},
		{name: "/delete_user", description: "Delete your user and all your data", registered: true, run: b.deleteUser},
		{name: "/update_user", usage: "<user name>", description: "Change your user name", registered: true, run: b.updateUser},
		{name: "/in", description: "Clock in", registered: true, run: b.clock(clocking.In)},
		{name: "/pause", description: "Pause your working day", registered: true, run: b.clock(clocking.Pause)},
		{name: "/return", description: "Return from a pause", registered: true, run: b.clock(clocking.Return)},
		{name: "/out", description: "Clock out", registered: true, run: b.clock(clocking.Out)},
		{name: "/time", usage: "[today|week|month]", description: "Show your worked time", registered: true, run: b.workedTime},
		{name: "/time_history", usage: "[today|week|month]", description: "Show your worked time per day", registered: true, run: b.timeHistory},
		{name: "/clock_history", usage: "[today|week|month]", description: "Show your clock actions per day", registered: true, run: b.clockHistory},
		{name: "/user_status", usage: "<user name|alias>", description: "Check whether a user is working right now", registered: true, run: b.userStatus},
		{name: "/alias", usage: "[alias]", description: "Add an alias to your user, or list all aliases", registered: true, run: b.alias},
		{name: "/time_zone", usage: "[time zone]", description: "Show or change your time zone", registered: true, run: b.timeZone},
		{name: "/management", description: "Get temporary credentials for the web app", registered: true, run: b.management},
	}
	if options.Intratime != nil {
		b.commands = append(b.commands, &command{
			name:        "/intratime",
			usage:       "[enable <email> <pin>|disable]",
			description: "Show or change the sync of your clockings with Intratime",
			registered:  true,
			run:         b.intratimeSettings,
			mask:        maskCredentials,
		})
	}
	for _, cmd := range b.commands {
		b.byName[cmd.name] = cmd
	}
	return b
}

// Register mounts the slash command endpoint.
func Register(r gin.IRouter, b *Bot) {
	r.POST("/slack/commands", b.Handle)
}

// Handle answers one slash command request.
func (b *Bot) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"result": "could not read request"})
		return
	}

	ctx := c.Request.Context()
	rc := &RequestContext{Request: c.Request, Body: body}
	if err := Run(ctx, rc, b.base...); err != nil {
		b.reject(c, rc, err)
		return
	}

	cmd, ok := b.byName[rc.Command.Command]
	if !ok {
		c.JSON(http.StatusOK, ephemeral(errorText(fmt.Sprintf("Unknown command `%s`. Type `/help` to list the available commands", rc.Command.Command))))
		return
	}
	rc.Mask = cmd.mask
	if cmd.registered {
		if err := Run(ctx, rc, b.user...); err != nil {
			b.reject(c, rc, err)
			return
		}
	}

	msg, err := cmd.run(ctx, rc)
	if err != nil {
		b.reject(c, rc, err)
		return
	}
	if msg == nil {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (b *Bot) reject(c *gin.Context, rc *RequestContext, err error) {
	var rejection *Rejection
	if errors.As(err, &rejection) {
		if rejection.Reply != nil {
			c.JSON(rejection.Status, rejection.Reply)
			return
		}
		b.logger.Info("slack request rejected", zap.String("reason", rejection.Reason), zap.Int("status", rejection.Status))
		c.JSON(rejection.Status, gin.H{"result": rejection.Reason})
		return
	}

	b.logger.Error("slash command failed",
		zap.Error(err),
		zap.String("command", rc.Command.Command),
		zap.String("user_id", rc.Command.UserID))
	if nerr := b.notifier.Error(fmt.Sprintf("Command `%s` of user `%s` failed: %v", rc.Command.Command, rc.Command.UserID, err)); nerr != nil {
		b.logger.Warn("failed to notify error channel", zap.Error(nerr))
	}
	c.JSON(http.StatusOK, ephemeral(errorText(internalError)))
}

// defaultReference pins the request time for commands that run without a
// registered user.
func (b *Bot) defaultReference(ctx context.Context, rc *RequestContext) error {
	ref, err := clocking.NewReference(b.options.Now(), b.options.DefaultTimezone)
	if err != nil {
		return err
	}
	rc.Ref = ref
	return nil
}

func (b *Bot) rangeArg(rc *RequestContext) (clocking.RangeSelector, *slack.Msg) {
	var arg string
	if len(rc.Args) > 0 {
		arg = rc.Args[0]
	}
	sel, err := clocking.ParseRangeSelector(arg)
	if err != nil {
		return "", ephemeral(errorText(fmt.Sprintf("Invalid time range `%s`. Allowed values: `today`, `week`, `month`", arg)))
	}
	return sel, nil
}
