// Package handshake coordinates the cross-window message exchange with the
// remote DAM picker: a single held window, a small state machine, and the
// encoded configuration payloads the picker is bootstrapped with.
//
// Messages on the shared channel are JSON objects keyed by the feature
// namespace; anything not carrying the key is someone else's traffic and is
// ignored.
package handshake

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
)

// Namespace is the top-level marker key of every message exchanged with the
// picker, and the query parameter the launch configuration travels under.
const Namespace = "damlink"

// State of the coordinator with respect to the picker window.
type State int

const (
	StateClosed State = iota
	StateAwaitingConfig
	StateConfigSent
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateAwaitingConfig:
		return "awaiting_config"
	case StateConfigSent:
		return "config_sent"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config is the session configuration handed to the picker: where to submit
// imports, what it may submit, and what this host already has.
type Config struct {
	CallbackURL  string   `json:"callbackurl"`
	Extensions   []string `json:"filetypes,omitempty"`
	ExistingUIDs []string `json:"existing_assets,omitempty"`
}

// Window is a held reference to the opened picker window.
type Window interface {
	// PostMessage delivers payload to the window, addressed to exactly the
	// given origin.
	PostMessage(payload, origin string) error
	Close() error
}

// Opener opens the named picker window.
type Opener interface {
	Open(url, name string, width, height int) (Window, error)
}

// Refresher re-fetches the host view of previously imported items.
type Refresher interface {
	Refresh()
}

// Coordinator drives one picker window. It holds at most one live window
// reference; opening again refocuses rather than multiplying windows (the
// window name makes the browser reuse the slot, the coordinator mirrors
// that).
type Coordinator struct {
	opener    Opener
	refresher Refresher
	serverURL string
	origin    string

	mu     sync.Mutex
	window Window
	state  State
	config Config
}

// New creates a Coordinator for the picker at serverURL. Outgoing messages
// are addressed only to that URL's origin.
func New(opener Opener, refresher Refresher, serverURL string, config Config) (*Coordinator, error) {
	origin, err := OriginOf(serverURL)
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		opener:    opener,
		refresher: refresher,
		serverURL: serverURL,
		origin:    origin,
		config:    config,
		state:     StateClosed,
	}, nil
}

// OpenPicker opens or refocuses the picker window at the given size and
// starts waiting for its configuration request.
func (c *Coordinator) OpenPicker(width, height int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, err := c.opener.Open(c.LaunchURL(), Namespace, width, height)
	if err != nil {
		return fmt.Errorf("opening picker window: %w", err)
	}
	c.window = w
	c.state = StateAwaitingConfig
	return nil
}

// LaunchURL is the picker URL with the short launch configuration embedded
// as an encoded query parameter.
func (c *Coordinator) LaunchURL() string {
	short := Config{CallbackURL: c.config.CallbackURL}
	return c.serverURL + "?" + Namespace + "=" + EncodeConfig(short)
}

// HandleIncoming processes one raw message from the shared channel. Messages
// without the namespace key, and actions it does not know, are ignored
// without error.
func (c *Coordinator) HandleIncoming(raw []byte) error {
	var envelope map[string]struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil
	}
	inner, ok := envelope[Namespace]
	if !ok {
		return nil
	}

	switch inner.Action {
	case "send_config":
		return c.sendConfig()
	case "reload":
		c.refresher.Refresh()
		return nil
	case "close":
		return c.closeWindow()
	default:
		return nil
	}
}

// State reports the coordinator's current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) sendConfig() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A config request without a held window means the window was already
	// closed; nothing to answer.
	if c.window == nil {
		return nil
	}

	payload, err := json.Marshal(map[string]any{
		Namespace: map[string]any{"config": c.config},
	})
	if err != nil {
		return fmt.Errorf("encoding picker config: %w", err)
	}
	if err := c.window.PostMessage(string(payload), c.origin); err != nil {
		return fmt.Errorf("posting picker config: %w", err)
	}
	c.state = StateConfigSent
	return nil
}

func (c *Coordinator) closeWindow() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.window == nil {
		return nil
	}
	err := c.window.Close()
	c.window = nil
	c.state = StateClosed
	return err
}

// EncodeConfig renders a configuration the way it travels in a URL:
// URL-escaped base64 of its JSON form.
func EncodeConfig(config Config) string {
	data, _ := json.Marshal(config)
	return url.QueryEscape(base64.StdEncoding.EncodeToString(data))
}

// DecodeConfig reverses EncodeConfig.
func DecodeConfig(encoded string) (Config, error) {
	unescaped, err := url.QueryUnescape(encoded)
	if err != nil {
		return Config{}, fmt.Errorf("unescaping picker config: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(unescaped)
	if err != nil {
		return Config{}, fmt.Errorf("decoding picker config: %w", err)
	}
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing picker config: %w", err)
	}
	return config, nil
}

// OriginOf reduces a URL to its origin, scheme://host.
func OriginOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing server URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("server URL %q has no origin", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
