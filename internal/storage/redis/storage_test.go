package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/kingdom-bot/internal/model"
	"github.com/mcoot/kingdom-bot/internal/testutil"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.LogMaxLen = 3

	s.storage = NewWithClient(client, cfg, testutil.NopLogger())
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Player tests

func (s *StorageSuite) TestCreateAndGetPlayer() {
	player := model.NewPlayer("alice@c.us", "Alice", s.now)

	created, ok, err := s.storage.CreatePlayer(s.ctx, player)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(player.Sender, created.Sender)

	retrieved, err := s.storage.GetPlayer(s.ctx, "alice@c.us")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.DisplayName)
	s.Equal(model.PlayerStateNew, retrieved.State)
	s.True(s.now.Equal(retrieved.CreatedAt))
	s.NotNil(retrieved.Payload.Notifications)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestCreatePlayerKeepsExisting() {
	_, _, _ = s.storage.CreatePlayer(s.ctx, model.NewPlayer("alice@c.us", "Alice", s.now))

	existing, ok, err := s.storage.CreatePlayer(s.ctx, model.NewPlayer("alice@c.us", "Other", s.now))
	s.Require().NoError(err)
	s.False(ok)
	s.Equal("Alice", existing.DisplayName)
}

func (s *StorageSuite) TestUpdatePlayerRoundTripsExpectation() {
	_, _, _ = s.storage.CreatePlayer(s.ctx, model.NewPlayer("alice@c.us", "Alice", s.now))
	until := s.now.Add(5 * time.Minute)

	_, err := s.storage.UpdatePlayer(s.ctx, "alice@c.us", func(p *model.Player) error {
		p.Expectation = model.Expectation{Type: "nickname_confirm", Meta: json.RawMessage(`{"n":"rex"}`), Until: &until}
		p.Kingdom = "ازمار"
		return nil
	})
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "alice@c.us")
	s.Require().NoError(err)
	s.Equal("nickname_confirm", retrieved.Expectation.Type)
	s.JSONEq(`{"n":"rex"}`, string(retrieved.Expectation.Meta))
	s.Require().NotNil(retrieved.Expectation.Until)
	s.True(until.Equal(*retrieved.Expectation.Until))
	s.Equal(model.Kingdom("ازمار"), retrieved.Kingdom)
}

func (s *StorageSuite) TestUpdatePlayerNotFound() {
	_, err := s.storage.UpdatePlayer(s.ctx, "nobody", func(p *model.Player) error { return nil })
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.False(s.mini.Exists(playerKey("nobody")))
}

func (s *StorageSuite) TestMalformedPayloadFailsOpen() {
	_, _, _ = s.storage.CreatePlayer(s.ctx, model.NewPlayer("alice@c.us", "Alice", s.now))

	raw, err := s.mini.Get(playerKey("alice@c.us"))
	s.Require().NoError(err)
	var rec playerRecord
	s.Require().NoError(json.Unmarshal([]byte(raw), &rec))
	rec.Data = "{not json"
	broken, _ := json.Marshal(rec)
	s.Require().NoError(s.mini.Set(playerKey("alice@c.us"), string(broken)))

	retrieved, err := s.storage.GetPlayer(s.ctx, "alice@c.us")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.DisplayName)
	s.Empty(retrieved.Payload.Nickname)
	s.Empty(retrieved.Payload.Notifications)
}

func (s *StorageSuite) TestListPlayersSkipsUnreadableRecords() {
	_, _, _ = s.storage.CreatePlayer(s.ctx, model.NewPlayer("alice@c.us", "Alice", s.now))
	_, _, _ = s.storage.CreatePlayer(s.ctx, model.NewPlayer("bob@c.us", "Bob", s.now))
	s.Require().NoError(s.mini.Set(playerKey("bob@c.us"), "garbage"))

	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal("alice@c.us", players[0].Sender)
}

func (s *StorageSuite) TestListPlayersEmpty() {
	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Empty(players)
}

// Log tests

func (s *StorageSuite) TestAppendLogTrimsToMaxLen() {
	for _, id := range []string{"1", "2", "3", "4"} {
		err := s.storage.AppendLog(s.ctx, &model.LogEntry{
			ID:        id,
			Sender:    "alice@c.us",
			Event:     model.LogEventInbound,
			Payload:   []byte(`{"message":"hi"}`),
			CreatedAt: s.now,
		})
		s.Require().NoError(err)
	}

	entries, err := s.mini.List(logsKey())
	s.Require().NoError(err)
	s.Require().Len(entries, 3)

	var first logRecord
	s.Require().NoError(json.Unmarshal([]byte(entries[0]), &first))
	s.Equal("2", first.ID)
}
