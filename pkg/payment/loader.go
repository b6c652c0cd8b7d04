package payment

import (
	"sync"

	"github.com/poornima-canteen/canteen-backend/pkg/config"
)

// Loader initializes the provider client lazily, exactly once on success.
// A failed attempt does not poison the loader: the next call retries,
// and only one attempt is ever in flight at a time.
type Loader struct {
	mu     sync.Mutex
	cfg    config.PaymentConfig
	client *Client
	build  func(config.PaymentConfig) (*Client, error)
}

// NewLoader prepares a lazy loader for the given provider configuration.
func NewLoader(cfg config.PaymentConfig) *Loader {
	return &Loader{cfg: cfg, build: NewClient}
}

// Load returns the cached client or attempts to build one.
func (l *Loader) Load() (*Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client != nil {
		return l.client, nil
	}

	client, err := l.build(l.cfg)
	if err != nil {
		return nil, err
	}
	l.client = client
	return client, nil
}
