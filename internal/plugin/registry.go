package plugin

import (
	"log/slog"
	"sort"
	"sync"
)

// Override adjusts a named plugin at load time
type Override struct {
	Name     string
	Priority *int
	Disabled bool
}

// Entry is a registered plugin with its name and priority resolved once
type Entry struct {
	Plugin   Plugin
	Name     string
	Priority int
}

type registered struct {
	Entry
	seq int // registration order, breaks priority ties
}

// Registry holds the loaded plugins in dispatch order
type Registry struct {
	mu        sync.RWMutex
	entries   []registered
	overrides map[string]Override
	nextSeq   int
	logger    *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *slog.Logger, overrides ...Override) *Registry {
	byName := make(map[string]Override, len(overrides))
	for _, o := range overrides {
		byName[o.Name] = o
	}
	return &Registry{
		overrides: byName,
		logger:    logger.With(slog.String("component", "plugin-registry")),
	}
}

// Load runs each loader in order. Loaders that fail or panic, including
// while reporting their name or priority, are logged and skipped; the
// others are registered.
func (r *Registry) Load(loaders ...Loader) {
	for i, load := range loaders {
		e, err := r.runLoader(load)
		if err != nil {
			r.logger.Error("failed to load plugin",
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			continue
		}
		r.add(e)
	}
}

// Register adds a constructed plugin, applying any override for its name
func (r *Registry) Register(p Plugin) error {
	e, err := describe(p)
	if err != nil {
		r.logger.Error("failed to register plugin", slog.String("error", err.Error()))
		return err
	}
	r.add(e)
	return nil
}

// Entries returns the registered plugins in dispatch order
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Entry
	}
	return out
}

// Names returns the plugin names in dispatch order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Name
	}
	return out
}

func (r *Registry) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.overrides[e.Name]; ok {
		if o.Disabled {
			r.logger.Info("plugin disabled by config", slog.String("plugin", e.Name))
			return
		}
		if o.Priority != nil {
			e.Priority = *o.Priority
		}
	}

	r.entries = append(r.entries, registered{Entry: e, seq: r.nextSeq})
	r.nextSeq++

	sort.SliceStable(r.entries, func(i, j int) bool {
		if r.entries[i].Priority != r.entries[j].Priority {
			return r.entries[i].Priority < r.entries[j].Priority
		}
		return r.entries[i].seq < r.entries[j].seq
	})

	r.logger.Debug("plugin registered",
		slog.String("plugin", e.Name),
		slog.Int("priority", e.Priority),
	)
}

func (r *Registry) runLoader(load Loader) (e Entry, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			e = Entry{}
			err = &Error{Stage: StageLoad, Err: &PanicError{Value: rec}}
		}
	}()

	p, err := load()
	if err != nil {
		return Entry{}, &Error{Stage: StageLoad, Err: err}
	}
	if p == nil {
		return Entry{}, &Error{Stage: StageLoad, Err: errNilPlugin}
	}
	return describe(p)
}

// describe resolves the plugin's name and priority, recovering panics
func describe(p Plugin) (e Entry, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			e = Entry{}
			err = &Error{Stage: StageLoad, Err: &PanicError{Value: rec}}
		}
	}()

	if p == nil {
		return Entry{}, &Error{Stage: StageLoad, Err: errNilPlugin}
	}
	return Entry{Plugin: p, Name: NameOf(p), Priority: PriorityOf(p)}, nil
}
