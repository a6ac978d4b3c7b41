/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"sync"

	"github.com/tomoncle/pgclient/config"
)

// Slot keeps a client alive across provider re-creation, such as a
// development server rebuilding its dependency graph on reload. The host
// application owns the slot and passes it to every provider it creates.
type Slot struct {
	mu     sync.Mutex
	client *Client
}

func NewSlot() *Slot {
	return &Slot{}
}

// Load returns the retained client, or nil.
func (s *Slot) Load() *Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// Store retains c, replacing any previous client without closing it.
func (s *Slot) Store(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = c
}

// Clear empties the slot if it still holds c and reports whether it did.
func (s *Slot) Clear(c *Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != c || c == nil {
		return false
	}
	s.client = nil
	return true
}

// Close closes the retained client, if any, and empties the slot. The host
// calls it once on shutdown; providers sharing the slot never close its client.
func (s *Slot) Close() error {
	s.mu.Lock()
	c := s.client
	s.client = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	return c.Close()
}

// owns reports whether c is the retained client.
func (s *Slot) owns(c *Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c != nil && s.client == c
}

// loadOrOpen returns the retained client or opens and retains a new one.
// The lock is held while opening so concurrent providers share one client.
func (s *Slot) loadOrOpen(open func() (*Client, error)) (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	c, err := open()
	if err != nil {
		return nil, err
	}
	s.client = c
	return c, nil
}

// ProviderConfig describes what a Provider builds.
type ProviderConfig struct {
	URL     string
	Mode    config.Mode
	Options *Options
	// Slot is optional; without one nothing survives the provider.
	Slot *Slot
}

// Provider lazily builds one Client and hands the same instance to every
// caller. Outside production the client is also retained in the slot, so a
// provider re-created with the same slot reuses it instead of opening a
// second pool.
type Provider struct {
	url     string
	mode    config.Mode
	options *Options
	slot    *Slot

	mu     sync.Mutex
	client *Client
}

func NewProvider(cfg ProviderConfig) *Provider {
	opts := cfg.Options
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Provider{
		url:     cfg.URL,
		mode:    cfg.Mode,
		options: opts,
		slot:    cfg.Slot,
	}
}

// NewProviderFromEnv resolves the URL, NODE_ENV mode and DB_* options from env.
func NewProviderFromEnv(env config.Env, slot *Slot) *Provider {
	return NewProvider(ProviderConfig{
		URL:     config.DatabaseURL(env),
		Mode:    config.ModeFrom(env),
		Options: OptionsFromEnv(env),
		Slot:    slot,
	})
}

// Client returns the provider's client, opening it on first use. Open errors
// are returned as is and nothing is memoized, so a later call retries.
func (p *Provider) Client(ctx context.Context) (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	open := func() (*Client, error) {
		return Open(ctx, p.url, p.mode, p.options)
	}

	var (
		c   *Client
		err error
	)
	switch {
	case p.slot == nil:
		c, err = open()
	case p.mode.IsProduction():
		if c = p.slot.Load(); c == nil {
			c, err = open()
		}
	default:
		c, err = p.slot.loadOrOpen(open)
	}
	if err != nil {
		return nil, err
	}
	p.client = c
	return c, nil
}

// MustClient is Client for startup code that cannot continue without a database.
func (p *Provider) MustClient(ctx context.Context) *Client {
	c, err := p.Client(ctx)
	if err != nil {
		panic(err)
	}
	return c
}

func (p *Provider) Mode() config.Mode { return p.mode }

// URL returns the connection string with the password masked.
func (p *Provider) URL() string { return config.RedactURL(p.url) }

// Close releases the provider's client. A client retained in the slot stays
// open for the other providers sharing it and is closed by Slot.Close; any
// other client is closed here.
func (p *Provider) Close() error {
	p.mu.Lock()
	c := p.client
	p.client = nil
	p.mu.Unlock()

	if c == nil || (p.slot != nil && p.slot.owns(c)) {
		return nil
	}
	return c.Close()
}
