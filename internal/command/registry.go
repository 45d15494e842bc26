package command

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// MenuEntry is a published (trigger, description) pair.
type MenuEntry struct {
	Command     string
	Description string
}

// MenuPublisher pushes the command menu to the messaging platform.
type MenuPublisher interface {
	PublishMenu(ctx context.Context, menu []MenuEntry) error
}

type entry struct {
	handler  Handler
	triggers []string
	invoke   InvokeFunc
}

// Registry holds the active handlers in registration order. Dispatch works on an
// immutable snapshot, so a concurrent reload never exposes a half-built list.
//
// Handlers loaded concurrently register in completion order; when two of them
// share a trigger, which one wins after a reload is not deterministic.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry

	loadMu    sync.Mutex
	source    Source
	factories Factories
	publisher MenuPublisher
}

// NewRegistry creates an empty registry. publisher may be nil.
func NewRegistry(publisher MenuPublisher) *Registry {
	return &Registry{publisher: publisher}
}

// SetSource configures where Load discovers definitions and how they are built.
func (r *Registry) SetSource(source Source, factories Factories) {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()
	r.source = source
	r.factories = factories
}

// Register appends h. Triggers are not deduplicated: the earliest handler wins.
func (r *Registry) Register(h Handler) {
	e := &entry{
		handler:  h,
		triggers: normalizeTriggers(h.Triggers()),
		invoke:   h.Invoke,
	}
	if g, ok := h.(Guarded); ok {
		e.invoke = Chain(h.Invoke, g.Guards()...)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]*entry, len(r.entries), len(r.entries)+1)
	copy(next, r.entries)
	r.entries = append(next, e)
}

func (r *Registry) snapshot() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries
}

// Match returns the first registered handler that has token among its triggers.
func (r *Registry) Match(token string) (Handler, InvokeFunc, bool) {
	token = strings.ToLower(token)
	for _, e := range r.snapshot() {
		for _, trigger := range e.triggers {
			if trigger == token {
				return e.handler, e.invoke, true
			}
		}
	}
	return nil, nil, false
}

// Handlers returns the registered handlers in registration order.
func (r *Registry) Handlers() []Handler {
	entries := r.snapshot()
	handlers := make([]Handler, 0, len(entries))
	for _, e := range entries {
		handlers = append(handlers, e.handler)
	}
	return handlers
}

// Menu lists the canonical trigger and description of every publishable handler.
func (r *Registry) Menu() []MenuEntry {
	var menu []MenuEntry
	for _, e := range r.snapshot() {
		description := e.handler.Description()
		if len(e.triggers) == 0 || description == "" {
			continue
		}
		menu = append(menu, MenuEntry{Command: e.triggers[0], Description: description})
	}
	return menu
}

// Load discovers every definition, builds and registers each one on its own
// goroutine and publishes the menu once all of them are done. Failing
// definitions are skipped and logged together.
func (r *Registry) Load(ctx context.Context) error {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()
	return r.load(ctx)
}

func (r *Registry) load(ctx context.Context) error {
	if r.source == nil {
		return fmt.Errorf("command source is not configured")
	}
	defs, err := r.source.Definitions(ctx)
	if err != nil {
		return fmt.Errorf("list command definitions: %w", err)
	}

	var g errgroup.Group
	errs := make([]error, len(defs))
	for i, def := range defs {
		i, def := i, def
		g.Go(func() error {
			errs[i] = r.loadOne(ctx, def)
			return errs[i]
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("[warn] some commands can't be loaded: %v", errors.Join(errs...))
	}

	menu := r.Menu()
	log.Printf("[info] loaded %d command(s), %d in menu", len(r.snapshot()), len(menu))
	if r.publisher != nil {
		if err := r.publisher.PublishMenu(ctx, menu); err != nil {
			log.Printf("[warn] publish command menu: %v", err)
		}
	}
	return nil
}

func (r *Registry) loadOne(ctx context.Context, def Definition) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("command %q: panic: %v", def.ID, rec)
		}
	}()

	h, err := r.build(def)
	if err != nil {
		return fmt.Errorf("command %q: %w", def.ID, err)
	}
	r.Register(h)
	if l, ok := h.(Loader); ok {
		l.OnLoaded(ctx)
	}
	return nil
}

func (r *Registry) build(def Definition) (Handler, error) {
	if def.Err != nil {
		return nil, def.Err
	}
	id := strings.TrimSpace(def.ID)
	if id == "" {
		return nil, fmt.Errorf("definition has no id")
	}
	factory, ok := r.factories[id]
	if !ok || factory == nil {
		return nil, fmt.Errorf("unknown command id")
	}
	h, err := factory()
	if err != nil {
		return nil, fmt.Errorf("construct: %w", err)
	}
	if h == nil {
		return nil, fmt.Errorf("construct: factory returned no handler")
	}
	if len(def.Triggers) == 0 && def.Description == nil {
		return h, nil
	}
	return &overridden{Handler: h, triggers: def.Triggers, description: def.Description}, nil
}

// UnregisterAll calls OnUnloaded on every handler and clears the registry.
func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	old := r.entries
	r.entries = nil
	r.mu.Unlock()

	for _, e := range old {
		if u, ok := e.handler.(Unloader); ok {
			u.OnUnloaded()
		}
	}
}

// Reload unloads every handler and runs discovery again. In-flight invocations
// keep running against the handlers they matched.
func (r *Registry) Reload(ctx context.Context) error {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()
	r.UnregisterAll()
	return r.load(ctx)
}

func normalizeTriggers(triggers []string) []string {
	out := make([]string, 0, len(triggers))
	for _, t := range triggers {
		if t = NormalizeTrigger(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// overridden applies manifest overrides on top of a handler.
type overridden struct {
	Handler
	triggers    []string
	description *string
}

func (o *overridden) Triggers() []string {
	if len(o.triggers) > 0 {
		return o.triggers
	}
	return o.Handler.Triggers()
}

func (o *overridden) Description() string {
	if o.description != nil {
		return *o.description
	}
	return o.Handler.Description()
}

func (o *overridden) Guards() []Guard {
	if g, ok := o.Handler.(Guarded); ok {
		return g.Guards()
	}
	return nil
}

func (o *overridden) OnLoaded(ctx context.Context) {
	if l, ok := o.Handler.(Loader); ok {
		l.OnLoaded(ctx)
	}
}

func (o *overridden) OnUnloaded() {
	if u, ok := o.Handler.(Unloader); ok {
		u.OnUnloaded()
	}
}
