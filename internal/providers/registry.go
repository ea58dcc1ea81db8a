package providers

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrProviderNotFound is returned when a provider is not registered.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProviderExists is returned when trying to register a duplicate provider.
	ErrProviderExists = errors.New("provider already exists")

	// ErrNoAvailableProvider is returned when no provider is available.
	ErrNoAvailableProvider = errors.New("no available provider")
)

// set holds the providers registered for one capability.
type set[T Provider] struct {
	byName      map[string]T
	defaultName string
}

func newSet[T Provider]() *set[T] {
	return &set[T]{byName: make(map[string]T)}
}

func (s *set[T]) register(p T) error {
	name := p.Name()
	if _, exists := s.byName[name]; exists {
		return ErrProviderExists
	}
	s.byName[name] = p

	// First available provider becomes the default
	if s.defaultName == "" && p.Available() {
		s.defaultName = name
	}
	return nil
}

func (s *set[T]) get(name string) (T, error) {
	p, exists := s.byName[name]
	if !exists {
		var zero T
		return zero, ErrProviderNotFound
	}
	return p, nil
}

func (s *set[T]) defaultProvider() (T, error) {
	if s.defaultName != "" {
		return s.byName[s.defaultName], nil
	}
	for _, name := range s.names() {
		if p := s.byName[name]; p.Available() {
			return p, nil
		}
	}
	var zero T
	return zero, ErrNoAvailableProvider
}

func (s *set[T]) setDefault(name string) error {
	if _, exists := s.byName[name]; !exists {
		return ErrProviderNotFound
	}
	s.defaultName = name
	return nil
}

func (s *set[T]) names() []string {
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry manages provider registration and lookup per capability.
type Registry struct {
	mu           sync.RWMutex
	translators  *set[Translator]
	extractors   *set[SceneExtractor]
	imageGens    *set[ImageGenerator]
	synthesizers *set[SpeechSynthesizer]
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		translators:  newSet[Translator](),
		extractors:   newSet[SceneExtractor](),
		imageGens:    newSet[ImageGenerator](),
		synthesizers: newSet[SpeechSynthesizer](),
	}
}

// Register adds p under every capability it implements. It returns
// ErrProviderExists if one of those capabilities already has a provider with the
// same name.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	registered := false
	if t, ok := p.(Translator); ok {
		if err := r.translators.register(t); err != nil {
			return err
		}
		registered = true
	}
	if e, ok := p.(SceneExtractor); ok {
		if err := r.extractors.register(e); err != nil {
			return err
		}
		registered = true
	}
	if g, ok := p.(ImageGenerator); ok {
		if err := r.imageGens.register(g); err != nil {
			return err
		}
		registered = true
	}
	if s, ok := p.(SpeechSynthesizer); ok {
		if err := r.synthesizers.register(s); err != nil {
			return err
		}
		registered = true
	}

	if !registered {
		return errors.New("provider implements no known capability")
	}
	return nil
}

// Translator returns the named translator, or the default when name is empty.
func (r *Registry) Translator(name string) (Translator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		return r.translators.defaultProvider()
	}
	return r.translators.get(name)
}

// SceneExtractor returns the named scene extractor, or the default when name is empty.
func (r *Registry) SceneExtractor(name string) (SceneExtractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		return r.extractors.defaultProvider()
	}
	return r.extractors.get(name)
}

// ImageGenerator returns the named image generator, or the default when name is empty.
func (r *Registry) ImageGenerator(name string) (ImageGenerator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		return r.imageGens.defaultProvider()
	}
	return r.imageGens.get(name)
}

// SpeechSynthesizer returns the named synthesizer, or the default when name is empty.
func (r *Registry) SpeechSynthesizer(name string) (SpeechSynthesizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		return r.synthesizers.defaultProvider()
	}
	return r.synthesizers.get(name)
}

// SetDefault sets the default provider for a capability.
func (r *Registry) SetDefault(c Capability, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch c {
	case CapabilityTranslate:
		return r.translators.setDefault(name)
	case CapabilityScenes:
		return r.extractors.setDefault(name)
	case CapabilityImage:
		return r.imageGens.setDefault(name)
	case CapabilitySpeech:
		return r.synthesizers.setDefault(name)
	default:
		return ErrProviderNotFound
	}
}

// List returns the provider names registered for a capability in sorted order.
func (r *Registry) List(c Capability) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch c {
	case CapabilityTranslate:
		return r.translators.names()
	case CapabilityScenes:
		return r.extractors.names()
	case CapabilityImage:
		return r.imageGens.names()
	case CapabilitySpeech:
		return r.synthesizers.names()
	default:
		return nil
	}
}
