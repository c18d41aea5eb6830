package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-event-scheduler/internal/command"
	"telegram-event-scheduler/internal/conversation"
	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/domain/model"
	"telegram-event-scheduler/internal/domain/ports/adapter"
	"telegram-event-scheduler/internal/infra/i18n"
	"telegram-event-scheduler/internal/usecase"
)

// sentMsg records one outgoing bot call. Rows is nil for plain messages.
type sentMsg struct {
	ChatID int64
	Text   string
	Rows   [][]adapter.InlineButton
}

type fakeBot struct {
	mu   sync.Mutex
	sent []sentMsg
}

func (b *fakeBot) SendMessage(_ context.Context, chatID int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMsg{ChatID: chatID, Text: text})
	return nil
}

func (b *fakeBot) SendButtons(_ context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMsg{ChatID: chatID, Text: text, Rows: rows})
	return nil
}

func (b *fakeBot) all() []sentMsg {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sentMsg(nil), b.sent...)
}

func (b *fakeBot) last(t *testing.T) sentMsg {
	t.Helper()
	msgs := b.all()
	if len(msgs) == 0 {
		t.Fatal("bot sent nothing")
	}
	return msgs[len(msgs)-1]
}

var _ adapter.TelegramBotAdapter = (*fakeBot)(nil)

// buttonData flattens a keyboard into its callback payloads, row by row.
func buttonData(msg sentMsg) []string {
	var out []string
	for _, row := range msg.Rows {
		for _, btn := range row {
			out = append(out, btn.Data)
		}
	}
	return out
}

// --- Mock Use Cases (Ports) ---

type mockUserUC struct {
	usecase.UserUseCase // Embed interface for forward compatibility
	mu                  sync.Mutex
	users               map[string]*model.User
}

func newMockUserUC() *mockUserUC {
	return &mockUserUC{users: make(map[string]*model.User)}
}

func (m *mockUserUC) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

type mockEventUC struct {
	usecase.EventUseCase // Embed interface
	mu                   sync.Mutex
	events               []*model.Event
	created              []usecase.CreateEventInput
	createErr            error
}

func (m *mockEventUC) Get(_ context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range m.events {
		if ev.ID == id {
			return ev, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockEventUC) Upcoming(_ context.Context) ([]*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []*model.Event
	for _, ev := range m.events {
		if ev.Joinable(now) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockEventUC) UpcomingAndRecent(_ context.Context, lookback time.Duration) ([]*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-lookback)
	var out []*model.Event
	for _, ev := range m.events {
		if !ev.StartsAt.Before(cutoff) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockEventUC) Create(_ context.Context, in usecase.CreateEventInput) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	ev, err := model.NewEvent("", in.Title, in.Location, in.StartsAt, in.Duration, in.Capacity, in.CostCents, in.CreatedBy)
	if err != nil {
		return nil, err
	}
	ev.ScaffoldID = in.ScaffoldID
	m.created = append(m.created, in)
	m.events = append(m.events, ev)
	return ev, nil
}

func (m *mockEventUC) Cancel(_ context.Context, eventID, requesterID string, requesterAdmin bool) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range m.events {
		if ev.ID != eventID {
			continue
		}
		if ev.Status == model.EventStatusCancelled {
			return nil, domain.ErrEventCancelled
		}
		if !requesterAdmin && ev.CreatedBy != requesterID {
			return nil, domain.ErrNotAllowed
		}
		ev.Status = model.EventStatusCancelled
		return ev, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockEventUC) createdInputs() []usecase.CreateEventInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]usecase.CreateEventInput(nil), m.created...)
}

type attendanceCall struct {
	EventID string
	UserID  string
}

type mockAttendanceUC struct {
	usecase.AttendanceUseCase // Embed interface
	mu                        sync.Mutex
	joins                     []attendanceCall
	leaves                    []attendanceCall
	joinErr                   error
	joinStatus                model.ParticipantStatus // defaults to joined
	leaveErr                  error
	promoted                  *model.Participant // returned by Leave
	joinedIDs                 []string
	rosters                   map[string]*usecase.RosterView
}

func newMockAttendanceUC() *mockAttendanceUC {
	return &mockAttendanceUC{rosters: make(map[string]*usecase.RosterView)}
}

func (m *mockAttendanceUC) Join(_ context.Context, eventID, userID string) (*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.joinErr != nil {
		return nil, m.joinErr
	}
	m.joins = append(m.joins, attendanceCall{eventID, userID})
	status := m.joinStatus
	if status == "" {
		status = model.ParticipantStatusJoined
	}
	return &model.Participant{EventID: eventID, UserID: userID, Status: status, JoinedAt: time.Now()}, nil
}

func (m *mockAttendanceUC) Leave(_ context.Context, eventID, userID string) (*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.leaveErr != nil {
		return nil, m.leaveErr
	}
	m.leaves = append(m.leaves, attendanceCall{eventID, userID})
	return m.promoted, nil
}

func (m *mockAttendanceUC) Roster(_ context.Context, eventID string) (*usecase.RosterView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rosters[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *mockAttendanceUC) JoinedEventIDs(_ context.Context, _ string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.joinedIDs...), nil
}

func (m *mockAttendanceUC) joinCalls() []attendanceCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]attendanceCall(nil), m.joins...)
}

type mockScaffoldUC struct {
	usecase.ScaffoldUseCase // Embed interface
	mu                      sync.Mutex
	scaffolds               []*model.Scaffold
	created                 []usecase.CreateScaffoldInput
	createErr               error
}

func (m *mockScaffoldUC) Get(_ context.Context, id string) (*model.Scaffold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sc := range m.scaffolds {
		if sc.ID == id {
			return sc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockScaffoldUC) ListActive(_ context.Context) ([]*model.Scaffold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Scaffold
	for _, sc := range m.scaffolds {
		if sc.Active {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (m *mockScaffoldUC) ListAll(_ context.Context) ([]*model.Scaffold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Scaffold(nil), m.scaffolds...), nil
}

func (m *mockScaffoldUC) Create(_ context.Context, in usecase.CreateScaffoldInput) (*model.Scaffold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	sc, err := model.NewScaffold("", in.Title, in.Location, in.Weekday, in.StartClock, in.Duration, in.Capacity, in.CostCents, in.LeadDays, in.CreatedBy)
	if err != nil {
		return nil, err
	}
	m.created = append(m.created, in)
	m.scaffolds = append(m.scaffolds, sc)
	return sc, nil
}

func (m *mockScaffoldUC) Deactivate(_ context.Context, id, requesterID string, requesterAdmin bool) (*model.Scaffold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sc := range m.scaffolds {
		if sc.ID != id {
			continue
		}
		if !sc.Active {
			return nil, domain.ErrScaffoldInactive
		}
		if !requesterAdmin && sc.CreatedBy != requesterID {
			return nil, domain.ErrNotAllowed
		}
		sc.Active = false
		return sc, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockScaffoldUC) createdInputs() []usecase.CreateScaffoldInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]usecase.CreateScaffoldInput(nil), m.created...)
}

type paymentCall struct {
	EventID     string
	PayerID     string
	AmountCents int64
	Note        string
}

type mockPaymentUC struct {
	usecase.PaymentUseCase // Embed interface
	mu                     sync.Mutex
	records                []paymentCall
	recordErr              error
	splits                 map[string]*usecase.SplitView
}

func newMockPaymentUC() *mockPaymentUC {
	return &mockPaymentUC{splits: make(map[string]*usecase.SplitView)}
}

func (m *mockPaymentUC) Record(_ context.Context, eventID, payerID string, amountCents int64, note string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return nil, m.recordErr
	}
	m.records = append(m.records, paymentCall{eventID, payerID, amountCents, note})
	return &model.Payment{ID: "pay-1", EventID: eventID, PayerID: payerID, AmountCents: amountCents, Note: note, RecordedAt: time.Now()}, nil
}

func (m *mockPaymentUC) Split(_ context.Context, eventID string) (*usecase.SplitView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.splits[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *mockPaymentUC) recordCalls() []paymentCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]paymentCall(nil), m.records...)
}

type mockStatsUC struct {
	usecase.StatsUseCase // Embed interface
	summary              *usecase.StatsSummary
	summaryErr           error
}

func (m *mockStatsUC) Summary(_ context.Context) (*usecase.StatsSummary, error) {
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	if m.summary != nil {
		return m.summary, nil
	}
	return &usecase.StatsSummary{GeneratedAt: time.Now()}, nil
}

// --- Fixture ---

// catalogFixture wires the catalog against mock use cases and the embedded
// English locale, with the real engine and orchestrator in between, so flow
// tests run the same path the bot runs in production.
type catalogFixture struct {
	bot        *fakeBot
	tr         *i18n.Translator
	render     *Renderer
	users      *mockUserUC
	events     *mockEventUC
	scaffolds  *mockScaffoldUC
	attendance *mockAttendanceUC
	payments   *mockPaymentUC
	stats      *mockStatsUC
	deps       *command.Deps
	engine     *conversation.Engine
	orch       *command.Orchestrator
	reg        *command.Registry
	cat        *Catalog

	answered int // prompts answered so far, test goroutine only
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	log := zerolog.New(nil)
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}

	f := &catalogFixture{
		bot:        &fakeBot{},
		tr:         tr,
		users:      newMockUserUC(),
		events:     &mockEventUC{},
		scaffolds:  &mockScaffoldUC{},
		attendance: newMockAttendanceUC(),
		payments:   newMockPaymentUC(),
		stats:      &mockStatsUC{},
	}
	f.deps = &command.Deps{
		Users:      f.users,
		Events:     f.events,
		Scaffolds:  f.scaffolds,
		Attendance: f.attendance,
		Payments:   f.payments,
		Stats:      f.stats,
		Loc:        time.UTC,
	}
	f.render = NewRenderer(tr, time.UTC)
	ann := NewAnnouncer(f.bot, tr, f.render, 0, log)

	f.engine = conversation.NewEngine(f.bot, conversation.Messages{
		Cancelled:     tr.T("conv_cancelled"),
		Expired:       tr.T("conv_expired"),
		InvalidChoice: tr.T("conv_invalid_choice"),
		CancelButton:  tr.T("button_cancel"),
	}, 0, log)
	f.orch = command.NewOrchestrator(f.engine, f.bot, f.deps, command.OrchestratorMessages{
		Busy:     tr.T("busy_pending"),
		Internal: tr.T("internal_error"),
	}, log)

	f.reg = command.NewRegistry()
	f.cat = NewCatalog(f.deps, f.bot, tr, f.render, ann, 0, 0, log)
	if err := f.cat.Register(f.reg); err != nil {
		t.Fatalf("register catalog: %v", err)
	}
	return f
}

func (f *catalogFixture) registered(t *testing.T, key string) *command.Registered {
	t.Helper()
	reg, ok := f.reg.Get(key)
	if !ok {
		t.Fatalf("command %q not registered", key)
	}
	return reg
}

func (f *catalogFixture) run(t *testing.T, key string, inv command.Invocation) error {
	t.Helper()
	return f.orch.Run(context.Background(), f.registered(t, key), inv)
}

func (f *catalogFixture) runAsync(t *testing.T, key string, inv command.Invocation) chan error {
	t.Helper()
	reg := f.registered(t, key)
	done := make(chan error, 1)
	go func() { done <- f.orch.Run(context.Background(), reg, inv) }()
	return done
}

func (f *catalogFixture) keyboardCount() int {
	n := 0
	for _, msg := range f.bot.all() {
		if msg.Rows != nil {
			n++
		}
	}
	return n
}

// answer feeds text into the user's pending prompt. Every prompt and every
// re-prompt carries a keyboard, so waiting for the matching keyboard message
// guarantees the prompt is fully rendered before input arrives.
func (f *catalogFixture) answer(t *testing.T, userID int64, text string) {
	t.Helper()
	f.answered++
	n := f.answered
	waitFor(t, func() bool { return f.keyboardCount() >= n && f.engine.IsActive(userID) }, "prompt")
	consumed, err := f.engine.HandleInput(context.Background(), userID, text)
	if err != nil || !consumed {
		t.Fatalf("HandleInput(%q) = (%v, %v)", text, consumed, err)
	}
}

// awaitPrompt waits until the user's pending prompt is on the wire and
// returns it.
func (f *catalogFixture) awaitPrompt(t *testing.T, userID int64) sentMsg {
	t.Helper()
	waitFor(t, func() bool {
		if !f.engine.IsActive(userID) {
			return false
		}
		msgs := f.bot.all()
		return len(msgs) > 0 && msgs[len(msgs)-1].Rows != nil
	}, "prompt")
	return f.bot.last(t)
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func awaitErr(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return")
		return nil
	}
}

// --- Seed helpers ---

func (f *catalogFixture) seedUser(u *model.User) *model.User {
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	f.users.users[u.ID] = u
	return u
}

func member(id string, tgID int64, username string) *model.User {
	return &model.User{ID: id, TelegramID: tgID, Username: username}
}

func futureEvent(id, title string, startsIn time.Duration) *model.Event {
	return &model.Event{
		ID:        id,
		Title:     title,
		StartsAt:  time.Now().Add(startsIn),
		Duration:  2 * time.Hour,
		Capacity:  4,
		Status:    model.EventStatusScheduled,
		CreatedBy: "creator-1",
	}
}

func (f *catalogFixture) seedEvent(ev *model.Event) *model.Event {
	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	f.events.events = append(f.events.events, ev)
	return ev
}

func (f *catalogFixture) seedScaffold(sc *model.Scaffold) *model.Scaffold {
	f.scaffolds.mu.Lock()
	defer f.scaffolds.mu.Unlock()
	f.scaffolds.scaffolds = append(f.scaffolds.scaffolds, sc)
	return sc
}

func invFor(u *model.User, args string) command.Invocation {
	return command.Invocation{
		Origin:     command.OriginCommand,
		ChatID:     u.TelegramID,
		TelegramID: u.TelegramID,
		User:       u,
		Args:       args,
	}
}

func callbackInvFor(u *model.User, args string) command.Invocation {
	return command.Invocation{
		Origin:     command.OriginCallback,
		CallbackID: "cbq-1",
		ChatID:     u.TelegramID,
		TelegramID: u.TelegramID,
		User:       u,
		Args:       args,
	}
}
