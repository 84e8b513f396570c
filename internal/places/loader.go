package places

import (
	"errors"
	"sync"
	"time"
)

// Loader hands out a single shared Client, built exactly once no matter
// how many callers ask. Callers wait on Get instead of polling some
// global ready flag.
type Loader struct {
	apiKey  string
	timeout time.Duration

	once   sync.Once
	client *Client
	err    error
}

func NewLoader(apiKey string, timeout time.Duration) *Loader {
	return &Loader{apiKey: apiKey, timeout: timeout}
}

func (l *Loader) Get() (*Client, error) {
	l.once.Do(func() {
		if l.apiKey == "" {
			l.err = errors.New("places api key not configured")
			return
		}
		l.client = NewClient(l.apiKey, l.timeout)
	})
	return l.client, l.err
}
