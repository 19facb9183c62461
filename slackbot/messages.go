package slackbot

import (
	"fmt"
	"strings"
	"time"

	"clockzy.com/clockzy/clocking"
	"clockzy.com/clockzy/store"
	"clockzy.com/clockzy/utils"
	"github.com/slack-go/slack"
)

const (
	userNotRegistered     = "Your user is not registered!. You can do it typing `/sign_up` command"
	userAlreadyRegistered = "Your user is already registered!"
	addUserSuccess        = "The user has been created successfully"
	addUserError          = "Could not create the user. Please contact with the app administrator"
	deleteUserSuccess     = "The user has been deleted successfully"
	deleteUserError       = "Could not delete the user. Please contact with the app administrator"
	updateUserSuccess     = "The user name has been updated successfully"
	internalError         = "Something went wrong. Please try again later or contact with the app administrator"
	noAliases             = ":warning: No registered aliases found :warning:"
	duplicateClock        = "You have already clocked at this very second. Please try again in a moment"

	intratimeEnabled       = "The Intratime integration has been enabled. Your clockings will be sent to Intratime"
	intratimeDisabled      = "The Intratime integration has been disabled"
	intratimeBadLogin      = "Intratime rejected the email and pin"
	intratimeUsage         = "Use `/intratime enable <email> <pin>` or `/intratime disable`"
	intratimeSyncAuthError = ":warning: Your clocking was saved in clockzy but Intratime rejected your credentials. Run `/intratime enable <email> <pin>` again :warning:"
	intratimeSyncError     = ":warning: Your clocking was saved in clockzy but could not be sent to Intratime :warning:"
)

const (
	imageBaseURL = "https://raw.githubusercontent.com/jmv74211/tools/master/images/repository/clockzy"
	separator    = "---------------------------"
	// days per section block, keeps every block under the Slack text limit
	daysPerBlock = 10
)

func successText(message string) string {
	return "*Status*: _SUCCESS_ :white_check_mark:\n*Message*: " + message
}

func errorText(message string) string {
	return "*Status*: _ERROR_ :x:\n*Message*: " + message
}

func markdown(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

func section(text string) slack.Block {
	return slack.NewSectionBlock(markdown(text), nil, nil)
}

// ephemeral wraps the texts into section blocks only the caller can see.
// The first text doubles as the notification fallback.
func ephemeral(texts ...string) *slack.Msg {
	msg := &slack.Msg{ResponseType: slack.ResponseTypeEphemeral}
	for _, text := range texts {
		msg.Blocks.BlockSet = append(msg.Blocks.BlockSet, section(text))
	}
	if len(texts) > 0 {
		msg.Text = texts[0]
	}
	return msg
}

// clockedMessage confirms a clocking. The image tells whether Intratime got
// it too.
func clockedMessage(userName string, event clocking.ClockEvent, ref clocking.Reference, synced bool) *slack.Msg {
	text := fmt.Sprintf(":white_check_mark: Your clocking has been registered successfully :white_check_mark:\n"+
		"*Username*: %s\n*Action*: %s\n*Datetime*: %s",
		userName, event.Action.Upper(), clocking.FormatTimestamp(event.Timestamp, ref.Location))

	target := "clockzy"
	if synced {
		target = "intratime"
	}
	image := slack.NewImageBlockElement(fmt.Sprintf("%s/%s_%s.png", imageBaseURL, event.Action, target), string(event.Action))
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         text,
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewDividerBlock(),
			slack.NewSectionBlock(markdown(text), nil, slack.NewAccessory(image)),
			slack.NewDividerBlock(),
		}},
	}
}

func workedTimeMessage(sel clocking.RangeSelector, worked clocking.WorkedDuration) *slack.Msg {
	return ephemeral(fmt.Sprintf(":timer_clock: Your working time %s is *%s* :timer_clock:", sel.Label(), worked))
}

func historyHeader(title string, from time.Time, ref clocking.Reference) string {
	return fmt.Sprintf("%s *%s HISTORY* %s\n\n:calendar: From _*%s*_ to _*%s*_ :calendar:\n",
		separator, strings.ToUpper(title), separator,
		clocking.FormatTimestamp(from, ref.Location),
		clocking.FormatTimestamp(ref.Now, ref.Location))
}

// timeHistoryMessage lists the worked time of every day, newest first.
func timeHistoryMessage(sel clocking.RangeSelector, h clocking.History, ref clocking.Reference) *slack.Msg {
	texts := []string{historyHeader(string(sel), h.From, ref) +
		fmt.Sprintf(":timer_clock: Total worked: *%s* :timer_clock:\n", h.Total)}

	var b strings.Builder
	for i := len(h.Days) - 1; i >= 0; i-- {
		day := h.Days[i]
		fmt.Fprintf(&b, "*• %s*: %s\n", day.Date.Format(clocking.DateLayout), day.Worked)
		if (len(h.Days)-i)%daysPerBlock == 0 {
			texts = append(texts, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		texts = append(texts, b.String())
	}
	return ephemeral(texts...)
}

// clockHistoryMessage lists the clock actions of every day in days, oldest
// first.
func clockHistoryMessage(sel clocking.RangeSelector, from time.Time, days []time.Time, events []clocking.ClockEvent, ref clocking.Reference) *slack.Msg {
	byDay := utils.GroupBy(events, func(e clocking.ClockEvent) string {
		return e.Timestamp.In(ref.Location).Format(clocking.DateLayout)
	})

	texts := []string{historyHeader(string(sel)+" clock", from, ref)}
	var b strings.Builder
	for i, day := range days {
		date := day.Format(clocking.DateLayout)
		dayEvents := byDay[date]
		if len(dayEvents) == 0 {
			fmt.Fprintf(&b, "• *%s*: :warning: No clocking data for this day :warning:\n", date)
		} else {
			fmt.Fprintf(&b, "• *%s*:\n", date)
			for _, e := range dayEvents {
				fmt.Fprintf(&b, "      • %s: %s\n", e.Action.Upper(), clocking.FormatTimestamp(e.Timestamp, ref.Location))
			}
		}
		if (i+1)%daysPerBlock == 0 {
			texts = append(texts, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		texts = append(texts, b.String())
	}
	return ephemeral(texts...)
}

func aliasesMessage(aliases []store.UserAliases) *slack.Msg {
	if len(aliases) == 0 {
		return ephemeral(noAliases)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *ALIASES* %s\n\n", separator, separator)
	for _, ua := range aliases {
		quoted := utils.Map(ua.Aliases, func(a string) string { return "_" + a + "_" })
		fmt.Fprintf(&b, "• *%s*: [ %s ]\n", ua.UserName, strings.Join(quoted, ", "))
	}
	return ephemeral(b.String())
}

// userStatusText tells whether the user is working right now, derived from
// the last clock action.
func userStatusText(userName string, last *clocking.ClockEvent) string {
	if last == nil {
		return fmt.Sprintf(":warning: The user `%s` does not have any clock data :warning:", userName)
	}
	switch last.Action {
	case clocking.In, clocking.Return:
		return fmt.Sprintf(":large_green_circle: The user `%s` is available :large_green_circle:", userName)
	case clocking.Pause:
		return fmt.Sprintf(":large_yellow_circle: The user `%s` is absent, but will return later :large_yellow_circle:", userName)
	default:
		return fmt.Sprintf(":red_circle: The user `%s` is not available :red_circle:", userName)
	}
}

func helpMessage(commands []*command) *slack.Msg {
	var b strings.Builder
	fmt.Fprintf(&b, "%s *COMMANDS* %s\n\n", separator, separator)
	for _, cmd := range commands {
		name := cmd.name
		if cmd.usage != "" {
			name += " " + cmd.usage
		}
		fmt.Fprintf(&b, "• `%s`: %s\n", name, cmd.description)
	}
	return ephemeral(b.String())
}
