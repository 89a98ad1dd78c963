package factory

import (
	"time"

	"github.com/mcoot/kingdom-bot/internal/dependencies/mocks"
	"github.com/mcoot/kingdom-bot/internal/plugin"
	"github.com/mcoot/kingdom-bot/internal/storage/memory"
	"github.com/mcoot/kingdom-bot/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
}

// NewTestApp creates an App backed by memory storage and mocked dependencies.
// extra loaders run after the built-in plugins.
func NewTestApp(extra ...plugin.Loader) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, Config{ExtraPlugins: extra}, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Memory:     store,
	}
}
