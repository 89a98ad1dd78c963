package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/kingdom-bot/internal/dependencies/mocks"
	"github.com/mcoot/kingdom-bot/internal/model"
	"github.com/mcoot/kingdom-bot/internal/plugin"
	"github.com/mcoot/kingdom-bot/internal/services/kingdom"
	"github.com/mcoot/kingdom-bot/internal/services/players"
	"github.com/mcoot/kingdom-bot/internal/storage/memory"
	"github.com/mcoot/kingdom-bot/internal/testutil"
)

// scriptedPlugin records calls and behaves as configured
type scriptedPlugin struct {
	name       string
	priority   int
	accept     func(ev *model.Event, p *model.Player) (bool, error)
	handle     func(ctx context.Context, ev *model.Event, p *model.Player, rc *plugin.ReplyContext) error
	mu         sync.Mutex
	seen       []*model.Player
	handleHits int
}

func (sp *scriptedPlugin) Name() string  { return sp.name }
func (sp *scriptedPlugin) Priority() int { return sp.priority }

func (sp *scriptedPlugin) CanHandle(ev *model.Event, p *model.Player) (bool, error) {
	sp.mu.Lock()
	sp.seen = append(sp.seen, p.Clone())
	sp.mu.Unlock()
	if sp.accept == nil {
		return true, nil
	}
	return sp.accept(ev, p)
}

func (sp *scriptedPlugin) Handle(ctx context.Context, ev *model.Event, p *model.Player, rc *plugin.ReplyContext) error {
	sp.mu.Lock()
	sp.handleHits++
	sp.mu.Unlock()
	if sp.handle == nil {
		return nil
	}
	return sp.handle(ctx, ev, p, rc)
}

func replyWith(msg string) func(context.Context, *model.Event, *model.Player, *plugin.ReplyContext) error {
	return func(_ context.Context, _ *model.Event, _ *model.Player, rc *plugin.ReplyContext) error {
		rc.Reply(msg)
		return nil
	}
}

type DispatcherSuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	players  *players.Service
	registry *plugin.Registry
	ctx      context.Context
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.players = players.New(s.storage, kingdom.NewResolver(nil, nil), s.clock, logger)
	s.registry = plugin.NewRegistry(logger)
	s.ctx = context.Background()
}

func (s *DispatcherSuite) dispatcher(cfg Config) *Dispatcher {
	return New(s.players, s.registry, s.storage, s.clock, testutil.NopLogger(), cfg)
}

func (s *DispatcherSuite) send(sender, message string) model.Response {
	resp, err := s.dispatcher(Config{}).Handle(s.ctx, model.Event{Sender: sender, Message: message})
	s.Require().NoError(err)
	return resp
}

func (s *DispatcherSuite) TestNoPluginsNoReply() {
	resp := s.send("alice@c.us", "hi")

	s.False(resp.Replied())
	s.NotNil(resp.Replies)

	_, err := s.players.GetBySender(s.ctx, "alice@c.us")
	s.NoError(err)
}

func (s *DispatcherSuite) TestDefaultSender() {
	s.registry.Register(&scriptedPlugin{name: "echo", priority: 1, handle: replyWith("ok")})

	resp := s.send("", "  hi  ")
	s.True(resp.Replied())

	_, err := s.players.GetBySender(s.ctx, model.DefaultSender)
	s.NoError(err)
}

func (s *DispatcherSuite) TestFirstReplyWins() {
	first := &scriptedPlugin{name: "first", priority: 1, handle: replyWith("A")}
	second := &scriptedPlugin{name: "second", priority: 2, handle: replyWith("B")}
	s.registry.Register(second)
	s.registry.Register(first)

	resp := s.send("alice@c.us", "hi")

	s.Require().Len(resp.Replies, 1)
	s.Equal("A", resp.Replies[0].Message)
	s.Empty(second.seen)
	s.Zero(second.handleHits)
}

func (s *DispatcherSuite) TestAcceptedWithoutReplyContinuesScan() {
	silent := &scriptedPlugin{name: "silent", priority: 1}
	answering := &scriptedPlugin{name: "answering", priority: 2, handle: replyWith("B")}
	s.registry.Register(silent)
	s.registry.Register(answering)

	resp := s.send("alice@c.us", "hi")

	s.Equal("B", resp.Replies[0].Message)
	s.Equal(1, silent.handleHits)
}

func (s *DispatcherSuite) TestEmptyStringIsAReply() {
	s.registry.Register(&scriptedPlugin{name: "empty", priority: 1, handle: replyWith("")})
	later := &scriptedPlugin{name: "later", priority: 2, handle: replyWith("B")}
	s.registry.Register(later)

	resp := s.send("alice@c.us", "hi")

	s.Require().True(resp.Replied())
	s.Equal("", resp.Replies[0].Message)
	s.Zero(later.handleHits)
}

func (s *DispatcherSuite) TestFailingPluginsAreSkipped() {
	s.registry.Register(&scriptedPlugin{
		name: "bad-predicate", priority: 1,
		accept: func(*model.Event, *model.Player) (bool, error) { return false, errors.New("nope") },
	})
	s.registry.Register(&scriptedPlugin{
		name: "panicky", priority: 2,
		accept: func(*model.Event, *model.Player) (bool, error) { panic("boom") },
	})
	s.registry.Register(&scriptedPlugin{
		name: "reply-then-fail", priority: 3,
		handle: func(_ context.Context, _ *model.Event, _ *model.Player, rc *plugin.ReplyContext) error {
			rc.Reply("discarded")
			return errors.New("handler failed")
		},
	})
	s.registry.Register(&scriptedPlugin{name: "good", priority: 4, handle: replyWith("C")})

	resp := s.send("alice@c.us", "hi")

	s.Require().Len(resp.Replies, 1)
	s.Equal("C", resp.Replies[0].Message)
}

// renamingPlugin starts panicking in Name once broken is set
type renamingPlugin struct {
	scriptedPlugin
	broken bool
}

func (rp *renamingPlugin) Name() string {
	if rp.broken {
		panic("name boom")
	}
	return rp.scriptedPlugin.Name()
}

func (s *DispatcherSuite) TestScanUsesRegisteredNames() {
	fickle := &renamingPlugin{scriptedPlugin: scriptedPlugin{
		name: "fickle", priority: 1,
		accept: func(*model.Event, *model.Player) (bool, error) { return false, nil },
	}}
	s.Require().NoError(s.registry.Register(fickle))
	s.Require().NoError(s.registry.Register(&scriptedPlugin{name: "good", priority: 2, handle: replyWith("C")}))
	fickle.broken = true

	resp := s.send("alice@c.us", "hi")

	s.Require().Len(resp.Replies, 1)
	s.Equal("C", resp.Replies[0].Message)
}

func (s *DispatcherSuite) TestExpiredExpectationClearedBeforePlugins() {
	_, _ = s.players.CreateOrGet(s.ctx, "alice@c.us", "")
	_, _ = s.players.SetExpectation(s.ctx, "alice@c.us", "nickname_confirm", nil, time.Minute)
	observer := &scriptedPlugin{name: "observer", priority: 1}
	s.registry.Register(observer)

	s.clock.Advance(2 * time.Minute)
	s.send("alice@c.us", "yes")

	s.Require().Len(observer.seen, 1)
	s.False(observer.seen[0].Expectation.IsSet())
}

func (s *DispatcherSuite) TestActiveExpectationVisibleToPlugins() {
	_, _ = s.players.CreateOrGet(s.ctx, "alice@c.us", "")
	_, _ = s.players.SetExpectation(s.ctx, "alice@c.us", "nickname_confirm", nil, time.Minute)
	observer := &scriptedPlugin{name: "observer", priority: 1}
	s.registry.Register(observer)

	s.clock.Advance(30 * time.Second)
	s.send("alice@c.us", "yes")

	s.Require().Len(observer.seen, 1)
	s.True(observer.seen[0].Expects("nickname_confirm", s.clock.Now()))
}

func (s *DispatcherSuite) TestKingdomResolvedBeforePlugins() {
	observer := &scriptedPlugin{name: "observer", priority: 1}
	s.registry.Register(observer)

	_, err := s.dispatcher(Config{}).Handle(s.ctx, model.Event{
		Sender:           "alice@c.us",
		Message:          "hi",
		IsGroup:          true,
		GroupParticipant: "Ali to Falorya Kingdom",
	})
	s.Require().NoError(err)

	s.Require().Len(observer.seen, 1)
	s.Equal(model.Kingdom("فالوريا"), observer.seen[0].Kingdom)
}

func (s *DispatcherSuite) TestUnknownGroupLeavesKingdom() {
	_, _ = s.players.CreateOrGet(s.ctx, "alice@c.us", "")
	_, _ = s.players.SetKingdomFromGroup(s.ctx, "alice@c.us", "AZMAR KINGDOM")

	_, err := s.dispatcher(Config{}).Handle(s.ctx, model.Event{
		Sender: "alice@c.us", Message: "hi", IsGroup: true, GroupParticipant: "Ali to Random Group",
	})
	s.Require().NoError(err)

	p, _ := s.players.GetBySender(s.ctx, "alice@c.us")
	s.Equal(model.Kingdom("ازمار"), p.Kingdom)
}

func (s *DispatcherSuite) TestNotificationsAttachedOnceInOrder() {
	_, _ = s.players.CreateOrGet(s.ctx, "alice@c.us", "")
	_, _ = s.players.AddNotification(s.ctx, "alice@c.us", "n1")
	_, _ = s.players.AddNotification(s.ctx, "alice@c.us", "n2")
	s.registry.Register(&scriptedPlugin{name: "echo", priority: 1, handle: replyWith("R")})

	resp := s.send("alice@c.us", "hi")
	want := "R\n\n" + NotificationHeader + "\nn1\n" + NotificationSeparator + "\nn2"
	s.Equal(want, resp.Replies[0].Message)

	resp = s.send("alice@c.us", "hi")
	s.Equal("R", resp.Replies[0].Message)
}

func (s *DispatcherSuite) TestNotificationsKeptWhenNoReply() {
	_, _ = s.players.CreateOrGet(s.ctx, "alice@c.us", "")
	_, _ = s.players.AddNotification(s.ctx, "alice@c.us", "n1")

	resp := s.send("alice@c.us", "hi")
	s.False(resp.Replied())

	p, _ := s.players.GetBySender(s.ctx, "alice@c.us")
	s.Len(p.Payload.Notifications, 1)
}

func (s *DispatcherSuite) TestInteractionLog() {
	s.registry.Register(&scriptedPlugin{name: "echo", priority: 1, handle: replyWith("R")})
	s.send("alice@c.us", "hi")
	s.send("alice@c.us", "again")

	entries := s.storage.Logs("alice@c.us")
	s.Require().Len(entries, 4)
	s.Equal(model.LogEventInbound, entries[0].Event)
	s.Equal(model.LogEventReply, entries[1].Event)
	s.NotEmpty(entries[0].ID)
	s.NotEqual(entries[0].ID, entries[1].ID)
	s.JSONEq(`{"message":"R","plugin":"echo"}`, string(entries[1].Payload))
}

func (s *DispatcherSuite) TestSerializedSendersSeeEachOthersWrites() {
	s.registry.Register(&scriptedPlugin{
		name: "counter", priority: 1,
		handle: func(ctx context.Context, ev *model.Event, p *model.Player, rc *plugin.ReplyContext) error {
			// writes back a value derived from the snapshot the plugin was given
			_, err := s.players.Update(ctx, ev.Sender, model.PlayerPatch{
				DisplayName: model.Ptr(p.DisplayName + "+"),
			})
			if err != nil {
				return err
			}
			rc.Reply("ok")
			return nil
		},
	})
	d := s.dispatcher(Config{SerializeSenders: true})

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.Handle(s.ctx, model.Event{Sender: "alice@c.us", Message: "inc"})
		}()
	}
	wg.Wait()

	p, err := s.players.GetBySender(s.ctx, "alice@c.us")
	s.Require().NoError(err)
	s.Equal(20, strings.Count(p.DisplayName, "+"))
	s.Zero(d.locks.size())
}

func (s *DispatcherSuite) TestNormalizeEvent() {
	ev := NormalizeEvent(model.Event{Message: "  hi ", GroupParticipant: "Ali => The Group"})
	s.Equal(model.DefaultSender, ev.Sender)
	s.Equal("hi", ev.Message)
	s.Equal("Ali", ev.Participant)
	s.Equal("The Group", ev.GroupName)

	ev = NormalizeEvent(model.Event{Sender: "x", GroupParticipant: "Solo Group"})
	s.Equal("Solo Group", ev.GroupName)
	s.Equal("Solo Group", ev.Participant)
}

func TestAttachNotifications(t *testing.T) {
	if got := AttachNotifications("R", nil); got != "R" {
		t.Fatalf("expected unchanged reply, got %q", got)
	}
	got := AttachNotifications("R", []model.Notification{{Text: "only"}})
	if !strings.HasSuffix(got, NotificationHeader+"\nonly") {
		t.Fatalf("unexpected block %q", got)
	}
}
