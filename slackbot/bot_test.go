package slackbot

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"clockzy.com/clockzy/clocking"
	"clockzy.com/clockzy/infrastructure/intratime"
	"clockzy.com/clockzy/model"
	"clockzy.com/clockzy/store"
	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const signingSecret = "8f742231b10e8888abcd99yyyzzz85a5"

type credentials struct {
	password string
	expires  time.Time
}

// fakeDirectory keeps users in memory and records what the bot did.
type fakeDirectory struct {
	mu          sync.Mutex
	users       map[string]*model.User
	configs     map[string]*model.UserConfig
	aliases     map[string]string
	credentials map[string]credentials
	commands    []string
	err         error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		users:       map[string]*model.User{},
		configs:     map[string]*model.UserConfig{},
		aliases:     map[string]string{},
		credentials: map[string]credentials{},
	}
}

func (f *fakeDirectory) FindUser(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func (f *fakeDirectory) FindUserByName(ctx context.Context, name string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.UserName == name {
			return u, nil
		}
	}
	if id, ok := f.aliases[name]; ok {
		return f.users[id], nil
	}
	return nil, nil
}

func (f *fakeDirectory) CreateUser(ctx context.Context, user *model.User, timezone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; ok {
		return store.ErrUserExists
	}
	f.users[user.ID] = user
	f.configs[user.ID] = &model.UserConfig{UserID: user.ID, TimeZone: timezone}
	return nil
}

func (f *fakeDirectory) DeleteUser(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	delete(f.configs, id)
	return nil
}

func (f *fakeDirectory) UpdateUserName(ctx context.Context, id, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].UserName = name
	return nil
}

func (f *fakeDirectory) GetUserConfig(ctx context.Context, userID string) (*model.UserConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configs[userID], nil
}

func (f *fakeDirectory) SaveUserConfig(ctx context.Context, cfg *model.UserConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs[cfg.UserID] = cfg
	return nil
}

func (f *fakeDirectory) AddAlias(ctx context.Context, userID, alias string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.aliases[alias]; ok {
		return store.ErrAliasExists
	}
	f.aliases[alias] = userID
	return nil
}

func (f *fakeDirectory) ListAliases(ctx context.Context) ([]store.UserAliases, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byUser := map[string][]string{}
	for alias, id := range f.aliases {
		byUser[id] = append(byUser[id], alias)
	}
	var out []store.UserAliases
	for id, aliases := range byUser {
		sort.Strings(aliases)
		out = append(out, store.UserAliases{UserID: id, UserName: f.users[id].UserName, Aliases: aliases})
	}
	return out, nil
}

func (f *fakeDirectory) RecordCommand(ctx context.Context, userID, command, parameters string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, strings.TrimSpace(command+" "+parameters))
	return nil
}

func (f *fakeDirectory) SaveTemporaryCredentials(ctx context.Context, userID, password string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credentials[userID] = credentials{password: password, expires: expires}
	return nil
}

func (f *fakeDirectory) SetIntratimeCredentials(ctx context.Context, id string, email, pin *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].Email = email
	f.users[id].Password = pin
	return nil
}

// fakeEvents is an in-memory event store that can be switched to failing.
type fakeEvents struct {
	mu      sync.Mutex
	events  []clocking.ClockEvent
	err     error
	saveErr error
}

func (f *fakeEvents) add(userID string, action clocking.Action, ts time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, clocking.ClockEvent{UserID: userID, Action: action, Timestamp: ts})
	sort.Slice(f.events, func(i, j int) bool { return f.events[i].Timestamp.Before(f.events[j].Timestamp) })
}

func (f *fakeEvents) GetLastEvent(ctx context.Context, userID string) (*clocking.ClockEvent, error) {
	events, err := f.GetEventsInRange(ctx, userID, time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil || len(events) == 0 {
		return nil, err
	}
	return &events[len(events)-1], nil
}

func (f *fakeEvents) GetEventsInRange(ctx context.Context, userID string, from, to time.Time) ([]clocking.ClockEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, &clocking.StoreError{Op: "events in range", Err: f.err}
	}
	var out []clocking.ClockEvent
	for _, e := range f.events {
		if e.UserID == userID && !e.Timestamp.Before(from) && !e.Timestamp.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) SaveEvent(ctx context.Context, userID string, action clocking.Action, timestamp time.Time, localTimestamp *time.Time) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.add(userID, action, timestamp)
	return nil
}

// fakeIntratime accepts the pins in accounts and records synced clockings
// as "action timestamp".
type fakeIntratime struct {
	accounts map[string]string
	synced   []string
	down     bool
}

func (f *fakeIntratime) CheckCredentials(ctx context.Context, email, pin string) (bool, error) {
	if f.down {
		return false, errors.New("intratime unreachable")
	}
	return f.accounts[email] == pin, nil
}

func (f *fakeIntratime) Sync(ctx context.Context, email, pin, action string, at time.Time) error {
	ok, err := f.CheckCredentials(ctx, email, pin)
	if err != nil {
		return err
	}
	if !ok {
		return intratime.ErrAuthentication
	}
	f.synced = append(f.synced, action+" "+at.Format(clocking.TimestampLayout))
	return nil
}

type fakeNotifier struct {
	messages []string
}

func (n *fakeNotifier) Error(message string) error {
	n.messages = append(n.messages, message)
	return nil
}

type fixture struct {
	dir       *fakeDirectory
	events    *fakeEvents
	notifier  *fakeNotifier
	intratime *fakeIntratime
	router    *gin.Engine
	loc       *time.Location
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	f := &fixture{
		dir:      newFakeDirectory(),
		events:   &fakeEvents{},
		notifier: &fakeNotifier{},
		intratime: &fakeIntratime{
			accounts: map[string]string{"jane@example.com": "1234"},
		},
		router: gin.New(),
		loc:    loc,
		now:    time.Date(2026, 10, 14, 18, 0, 0, 0, loc),
	}
	f.dir.users["U1"] = &model.User{ID: "U1", UserName: "jane"}
	f.dir.configs["U1"] = &model.UserConfig{UserID: "U1", TimeZone: "Europe/Berlin"}
	f.dir.users["U2"] = &model.User{ID: "U2", UserName: "john"}
	f.dir.configs["U2"] = &model.UserConfig{UserID: "U2", TimeZone: "America/New_York"}

	service := clocking.NewService(f.events, clocking.Options{ExcludeWeekends: true})
	bot := New(f.dir, service, f.notifier, zap.NewNop(), Options{
		SigningSecret:   signingSecret,
		ExcludeWeekends: true,
		CredentialsTTL:  10 * time.Minute,
		WebURL:          "https://clockzy.example.com",
		Intratime:       f.intratime,
		Now:             func() time.Time { return f.now },
	})
	Register(f.router, bot)
	return f
}

func (f *fixture) at(day, hour, min int) time.Time {
	return time.Date(2026, 10, day, hour, min, 0, 0, f.loc)
}

func sign(body, secret string, ts time.Time) (string, string) {
	timestamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil)), timestamp
}

func commandBody(userID, userName, command, text string) string {
	return url.Values{
		"token":     {"ignored"},
		"team_id":   {"T0001"},
		"user_id":   {userID},
		"user_name": {userName},
		"command":   {command},
		"text":      {text},
	}.Encode()
}

func (f *fixture) send(t *testing.T, body, secret string, signedAt time.Time) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if secret != "" {
		signature, timestamp := sign(body, secret, signedAt)
		req.Header.Set("X-Slack-Signature", signature)
		req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// command sends a correctly signed slash command and returns the text of
// every block of the reply.
func (f *fixture) command(t *testing.T, userID, command, text string) string {
	t.Helper()
	w := f.send(t, commandBody(userID, "slack-"+userID, command, text), signingSecret, time.Now())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	if w.Body.Len() == 0 {
		return ""
	}

	var reply struct {
		ResponseType string `json:"response_type"`
		Text         string `json:"text"`
		Blocks       []struct {
			Type string `json:"type"`
			Text *struct {
				Text string `json:"text"`
			} `json:"text"`
		} `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, "ephemeral", reply.ResponseType)

	var texts []string
	for _, block := range reply.Blocks {
		if block.Text != nil {
			texts = append(texts, block.Text.Text)
		}
	}
	return strings.Join(texts, "\n")
}

func TestRequestVerification(t *testing.T) {
	f := newFixture(t)
	body := commandBody("U1", "jane", "/time", "")

	tests := []struct {
		name     string
		secret   string
		signedAt time.Time
		reason   string
	}{
		{name: "missing headers", reason: "Missing 'X-Slack-Signature'"},
		{name: "wrong secret", secret: "not-the-secret", signedAt: time.Now(), reason: "Bad signature"},
		{name: "replayed request", secret: signingSecret, signedAt: time.Now().Add(-10 * time.Minute), reason: "Unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.send(t, body, tt.secret, tt.signedAt)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.reason)
		})
	}
	assert.Empty(t, f.dir.commands)
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t)
	reply := f.command(t, "U1", "/dance", "")
	assert.Contains(t, reply, "Unknown command `/dance`")
}

func TestUnregisteredUser(t *testing.T) {
	f := newFixture(t)
	reply := f.command(t, "U9", "/in", "")
	assert.Contains(t, reply, userNotRegistered)
	assert.Empty(t, f.events.events)
}

func TestSignUpAndDelete(t *testing.T) {
	f := newFixture(t)

	reply := f.command(t, "U9", "/sign_up", "")
	assert.Contains(t, reply, addUserSuccess)
	require.Contains(t, f.dir.users, "U9")
	assert.Equal(t, "slack-U9", f.dir.users["U9"].UserName)
	assert.Equal(t, clocking.DefaultTimezone, f.dir.configs["U9"].TimeZone)

	reply = f.command(t, "U9", "/sign_up", "")
	assert.Contains(t, reply, userAlreadyRegistered)

	reply = f.command(t, "U9", "/delete_user", "")
	assert.Contains(t, reply, deleteUserSuccess)
	assert.NotContains(t, f.dir.users, "U9")
}

func TestEcho(t *testing.T) {
	f := newFixture(t)
	assert.Empty(t, f.command(t, "U1", "/echo", ""))
	assert.Equal(t, []string{"/echo"}, f.dir.commands)
}

func TestClockCommands(t *testing.T) {
	f := newFixture(t)

	reply := f.command(t, "U1", "/out", "")
	assert.Contains(t, reply, "You do not have any previous registration")

	f.events.add("U1", clocking.In, f.at(14, 9, 0))
	f.events.add("U1", clocking.Pause, f.at(14, 12, 0))

	reply = f.command(t, "U1", "/in", "")
	assert.Contains(t, reply, "Your last clock action was `PAUSE`, so you can not `IN` clock action")
	assert.Contains(t, reply, "Allowed actions: `RETURN`")

	reply = f.command(t, "U1", "/return", "")
	assert.Contains(t, reply, "Your clocking has been registered successfully")
	assert.Contains(t, reply, "*Action*: RETURN")
	assert.Contains(t, reply, "*Datetime*: 2026-10-14 18:00:00")

	last, err := f.events.GetLastEvent(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, clocking.Return, last.Action)
	assert.Equal(t, []string{"/out", "/in", "/return"}, f.dir.commands)
}

func TestClockUsesUserTimezone(t *testing.T) {
	f := newFixture(t)
	reply := f.command(t, "U2", "/in", "")
	// 18:00 in Berlin is noon in New York
	assert.Contains(t, reply, "*Datetime*: 2026-10-14 12:00:00")
}

func TestWorkedTime(t *testing.T) {
	f := newFixture(t)
	f.events.add("U1", clocking.In, f.at(12, 9, 0))
	f.events.add("U1", clocking.Out, f.at(12, 17, 0))
	f.events.add("U1", clocking.In, f.at(14, 9, 0))
	f.events.add("U1", clocking.Pause, f.at(14, 12, 0))

	tests := []struct {
		arg      string
		expected string
	}{
		{arg: "", expected: "Your working time today is *3h 0m*"},
		{arg: "week", expected: "Your working time this week is *11h 0m*"},
		{arg: "month", expected: "Your working time this month is *11h 0m*"},
		{arg: "year", expected: "Invalid time range `year`"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			assert.Contains(t, f.command(t, "U1", "/time", tt.arg), tt.expected)
		})
	}
}

func TestTimeHistory(t *testing.T) {
	f := newFixture(t)
	f.events.add("U1", clocking.In, f.at(12, 9, 0))
	f.events.add("U1", clocking.Out, f.at(12, 17, 0))
	f.events.add("U1", clocking.In, f.at(14, 9, 0))
	f.events.add("U1", clocking.Out, f.at(14, 12, 30))

	reply := f.command(t, "U1", "/time_history", "week")
	assert.Contains(t, reply, "*WEEK HISTORY*")
	assert.Contains(t, reply, ":calendar: From _*2026-10-12 00:00:00*_ to _*2026-10-14 18:00:00*_")
	assert.Contains(t, reply, "Total worked: *11h 30m*")
	assert.Contains(t, reply, "*• 2026-10-13*: 0h 0m")

	newest := strings.Index(reply, "2026-10-14*: 3h 30m")
	oldest := strings.Index(reply, "2026-10-12*: 8h 0m")
	require.NotEqual(t, -1, newest)
	require.NotEqual(t, -1, oldest)
	assert.Less(t, newest, oldest)
}

func TestClockHistory(t *testing.T) {
	f := newFixture(t)
	f.events.add("U1", clocking.In, f.at(14, 9, 0))
	f.events.add("U1", clocking.Out, f.at(14, 12, 0))

	reply := f.command(t, "U1", "/clock_history", "week")
	assert.Contains(t, reply, "• *2026-10-12*: :warning: No clocking data for this day :warning:")
	assert.Contains(t, reply, "• *2026-10-14*:\n      • IN: 2026-10-14 09:00:00\n      • OUT: 2026-10-14 12:00:00")
}

func TestClockHistorySplitsLongRanges(t *testing.T) {
	f := newFixture(t)
	f.now = time.Date(2026, 10, 30, 18, 0, 0, 0, f.loc)

	// 22 weekdays so far this month
	reply := f.command(t, "U1", "/clock_history", "month")
	assert.Equal(t, 22, strings.Count(reply, "No clocking data for this day"))

	ref := clocking.Reference{Now: f.now, Location: f.loc}
	w, err := clocking.ResolveRange(clocking.Month, ref)
	require.NoError(t, err)
	days := clocking.Days(w, f.loc, true)
	require.Len(t, days, 22)

	msg := clockHistoryMessage(clocking.Month, w.From, days, nil, ref)
	// header plus blocks of 10, 10 and 2 days
	assert.Len(t, msg.Blocks.BlockSet, 4)
}

func TestUserStatus(t *testing.T) {
	f := newFixture(t)
	f.dir.aliases["johnny"] = "U2"

	reply := f.command(t, "U1", "/user_status", "johnny")
	assert.Contains(t, reply, "The user `john` does not have any clock data")

	f.events.add("U2", clocking.In, f.at(14, 9, 0))
	assert.Contains(t, f.command(t, "U1", "/user_status", "john"), "The user `john` is available")

	f.events.add("U2", clocking.Pause, f.at(14, 12, 0))
	assert.Contains(t, f.command(t, "U1", "/user_status", "john"), "is absent, but will return later")

	f.events.add("U2", clocking.Return, f.at(14, 13, 0))
	f.events.add("U2", clocking.Out, f.at(14, 17, 0))
	assert.Contains(t, f.command(t, "U1", "/user_status", "john"), ":red_circle: The user `john` is not available")

	assert.Contains(t, f.command(t, "U1", "/user_status", "nobody"), "The user `nobody` does not exist")
	assert.Contains(t, f.command(t, "U1", "/user_status", ""), "You must specify a user name or alias")
}

func TestAlias(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.command(t, "U1", "/alias", ""), noAliases)

	assert.Contains(t, f.command(t, "U1", "/alias", "jj"), "The alias `jj` has been added to your user")
	assert.Contains(t, f.command(t, "U2", "/alias", "jj"), "The alias `jj` is already in use")

	reply := f.command(t, "U1", "/alias", "")
	assert.Contains(t, reply, "*ALIASES*")
	assert.Contains(t, reply, "• *jane*: [ _jj_ ]")
}

func TestTimeZone(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.command(t, "U1", "/time_zone", ""), "Your time zone is `Europe/Berlin`")
	assert.Contains(t, f.command(t, "U1", "/time_zone", "Mars/Olympus"), "Unknown time zone `Mars/Olympus`")
	assert.Equal(t, "Europe/Berlin", f.dir.configs["U1"].TimeZone)

	assert.Contains(t, f.command(t, "U1", "/time_zone", "Europe/Madrid"), "Your time zone has been set to `Europe/Madrid`")
	assert.Equal(t, "Europe/Madrid", f.dir.configs["U1"].TimeZone)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	assert.Contains(t, f.command(t, "U1", "/update_user", ""), "You must specify the new user name")
	assert.Contains(t, f.command(t, "U1", "/update_user", "jane doe"), updateUserSuccess)
	assert.Equal(t, "jane doe", f.dir.users["U1"].UserName)
}

func TestManagement(t *testing.T) {
	f := newFixture(t)

	reply := f.command(t, "U1", "/management", "")
	creds, ok := f.dir.credentials["U1"]
	require.True(t, ok)
	assert.Len(t, creds.password, temporaryPasswordLength)
	assert.True(t, f.now.Add(10*time.Minute).Equal(creds.expires))
	assert.Contains(t, reply, "valid until 2026-10-14 18:10:00")
	assert.Contains(t, reply, "*Password*: `"+creds.password+"`")
	assert.Contains(t, reply, "*URL*: https://clockzy.example.com")
}

func TestHelp(t *testing.T) {
	f := newFixture(t)
	reply := f.command(t, "U9", "/help", "")
	assert.Contains(t, reply, "*COMMANDS*")
	assert.Contains(t, reply, "• `/time [today|week|month]`: Show your worked time")
}

func TestStoreFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("connection refused")

	reply := f.command(t, "U1", "/time", "")
	assert.Contains(t, reply, internalError)
	assert.NotContains(t, reply, "connection refused")
	require.Len(t, f.notifier.messages, 1)
	assert.Contains(t, f.notifier.messages[0], "connection refused")
	assert.Contains(t, f.notifier.messages[0], "`/time`")
}

func TestDirectoryFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.dir.err = errors.New("connection refused")

	reply := f.command(t, "U1", "/in", "")
	assert.Contains(t, reply, internalError)
	assert.Len(t, f.notifier.messages, 1)
}

func TestClockAtTheSameSecond(t *testing.T) {
	f := newFixture(t)
	f.events.saveErr = store.ErrDuplicateClock

	reply := f.command(t, "U1", "/in", "")
	assert.Contains(t, reply, duplicateClock)
	assert.NotContains(t, reply, internalError)
	assert.Empty(t, f.notifier.messages)
}

func TestIntratimeSettings(t *testing.T) {
	f := newFixture(t)

	reply := f.command(t, "U1", "/intratime", "")
	assert.Contains(t, reply, "The Intratime integration is `disabled`")

	reply = f.command(t, "U1", "/intratime", "enable not-an-email 1234")
	assert.Contains(t, reply, "`not-an-email` is not a valid email address")

	reply = f.command(t, "U1", "/intratime", "enable jane@example.com 0000")
	assert.Contains(t, reply, intratimeBadLogin)
	assert.False(t, f.dir.configs["U1"].IntratimeIntegration)
	assert.Nil(t, f.dir.users["U1"].Email)

	reply = f.command(t, "U1", "/intratime", "enable <mailto:jane@example.com|jane@example.com> 1234")
	assert.Contains(t, reply, intratimeEnabled)
	assert.True(t, f.dir.configs["U1"].IntratimeIntegration)
	assert.Equal(t, "Europe/Berlin", f.dir.configs["U1"].TimeZone)
	require.NotNil(t, f.dir.users["U1"].Email)
	assert.Equal(t, "jane@example.com", *f.dir.users["U1"].Email)

	reply = f.command(t, "U1", "/intratime", "")
	assert.Contains(t, reply, "The Intratime integration is `enabled`")

	reply = f.command(t, "U1", "/intratime", "enable jane@example.com")
	assert.Contains(t, reply, intratimeUsage)

	reply = f.command(t, "U1", "/intratime", "disable")
	assert.Contains(t, reply, intratimeDisabled)
	assert.False(t, f.dir.configs["U1"].IntratimeIntegration)
	assert.Nil(t, f.dir.users["U1"].Email)
	assert.Nil(t, f.dir.users["U1"].Password)

	for _, recorded := range f.dir.commands {
		assert.NotContains(t, recorded, "1234")
	}
	assert.Contains(t, f.dir.commands, "/intratime enable jane@example.com ****")
}

func TestIntratimeUnreachableOnEnable(t *testing.T) {
	f := newFixture(t)
	f.intratime.down = true

	reply := f.command(t, "U1", "/intratime", "enable jane@example.com 1234")
	assert.Contains(t, reply, internalError)
	assert.False(t, f.dir.configs["U1"].IntratimeIntegration)
	assert.Len(t, f.notifier.messages, 1)
}

func TestClockSyncsWithIntratime(t *testing.T) {
	f := newFixture(t)
	email, pin := "jane@example.com", "1234"
	f.dir.users["U1"].Email = &email
	f.dir.users["U1"].Password = &pin
	f.dir.configs["U1"].IntratimeIntegration = true

	reply := f.command(t, "U1", "/in", "")
	assert.Contains(t, reply, "Your clocking has been registered successfully")
	assert.NotContains(t, reply, ":warning:")
	assert.Equal(t, []string{"in 2026-10-14 18:00:00"}, f.intratime.synced)

	// john has not enabled the integration
	f.command(t, "U2", "/in", "")
	assert.Len(t, f.intratime.synced, 1)

	wrong := "0000"
	f.dir.users["U1"].Password = &wrong
	f.now = f.now.Add(time.Minute)
	reply = f.command(t, "U1", "/pause", "")
	assert.Contains(t, reply, "Your clocking has been registered successfully")
	assert.Contains(t, reply, intratimeSyncAuthError)
	assert.Empty(t, f.notifier.messages)

	f.intratime.down = true
	f.now = f.now.Add(time.Minute)
	reply = f.command(t, "U1", "/return", "")
	assert.Contains(t, reply, intratimeSyncError)
	require.Len(t, f.notifier.messages, 1)
	assert.Contains(t, f.notifier.messages[0], "Intratime clocking `RETURN`")

	last, err := f.events.GetLastEvent(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, clocking.Return, last.Action)
	assert.Len(t, f.intratime.synced, 1)
}

func TestClockedMessageImage(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	ref := clocking.Reference{Now: time.Date(2026, 10, 14, 9, 0, 0, 0, loc), Location: loc}
	event := clocking.ClockEvent{UserID: "U1", Action: clocking.In, Timestamp: ref.Now}

	tests := []struct {
		synced   bool
		expected string
	}{
		{false, imageBaseURL + "/in_clockzy.png"},
		{true, imageBaseURL + "/in_intratime.png"},
	}
	for _, tt := range tests {
		msg := clockedMessage("jane", event, ref, tt.synced)
		block, ok := msg.Blocks.BlockSet[1].(*slack.SectionBlock)
		require.True(t, ok)
		require.NotNil(t, block.Accessory)
		require.NotNil(t, block.Accessory.ImageElement)
		assert.Equal(t, tt.expected, block.Accessory.ImageElement.ImageURL)
	}
}

func TestIntratimeCommandNeedsClient(t *testing.T) {
	b := New(newFakeDirectory(), nil, &fakeNotifier{}, zap.NewNop(), Options{SigningSecret: signingSecret})
	_, ok := b.byName["/intratime"]
	assert.False(t, ok)
}

func TestMaskCredentials(t *testing.T) {
	tests := []struct {
		args     []string
		expected string
	}{
		{[]string{"enable", "jane@example.com", "1234"}, "enable jane@example.com ****"},
		{[]string{"disable"}, "disable"},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, maskCredentials(tt.args))
	}
}
