package domaintheme

import (
	"sort"
	"strings"
	"sync"
)

// AccentProperty is the style slot that mirrors the active domain accent.
const AccentProperty = "--accent-domain"

// StyleSink receives style variable writes. It is the channel presentation
// layers outside the consumer tree read the active accent from.
type StyleSink interface {
	SetProperty(name, value string)
}

// SinkFunc adapts a function to StyleSink.
type SinkFunc func(name, value string)

func (f SinkFunc) SetProperty(name, value string) { f(name, value) }

// Discard is a StyleSink that drops every write.
var Discard StyleSink = SinkFunc(func(string, string) {})

// Properties is an in-memory style variable namespace. It is safe for
// concurrent use.
type Properties struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewProperties() *Properties {
	return &Properties{values: map[string]string{}}
}

func (p *Properties) SetProperty(name, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.values == nil {
		p.values = map[string]string{}
	}
	p.values[name] = value
}

func (p *Properties) Get(name string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[name]
	return v, ok
}

// Snapshot copies the current variables.
func (p *Properties) Snapshot() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// CSS renders the variables as a :root rule with keys in lexical order.
func (p *Properties) CSS() string {
	values := p.Snapshot()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root{")
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(values[k])
		b.WriteByte(';')
	}
	b.WriteString("}")
	return b.String()
}
