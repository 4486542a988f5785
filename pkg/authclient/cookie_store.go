package authclient

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// CookieMetadataStore keeps the token pair in process memory only and pushes
// a metadata-only cookie into an injected jar so surrounding code can gate UI
// state on session presence without the secret ever reaching readable
// storage. Suited to higher-trust environments that restart the session with
// the process.
type CookieMetadataStore struct {
	jar     http.CookieJar
	siteURL *url.URL
	mu      sync.Mutex
	pair    *TokenPair
}

// sessionMetaCookie names the metadata cookie. It never carries a token.
const sessionMetaCookie = "session_meta"

// NewCookieMetadataStore creates a store publishing metadata cookies for
// siteURL into jar.
func NewCookieMetadataStore(jar http.CookieJar, siteURL *url.URL) *CookieMetadataStore {
	return &CookieMetadataStore{
		jar:     jar,
		siteURL: siteURL,
	}
}

// GetTokens returns the in-memory pair.
func (s *CookieMetadataStore) GetTokens() (*TokenPair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pair == nil {
		return nil, false
	}
	return s.pair, true
}

// SetTokens stores the pair in memory and publishes the metadata cookie.
func (s *CookieMetadataStore) SetTokens(pair *TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair = pair
	s.jar.SetCookies(s.siteURL, []*http.Cookie{s.metadataCookie(pair)})
	return nil
}

// RemoveTokens clears the in-memory pair and expires the metadata cookie.
func (s *CookieMetadataStore) RemoveTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair = nil

	expired := s.metadataCookie(&TokenPair{})
	expired.Value = ""
	expired.MaxAge = -1
	s.jar.SetCookies(s.siteURL, []*http.Cookie{expired})
}

// ExpiryBuffer returns zero: the higher-trust backend refreshes reactively.
func (s *CookieMetadataStore) ExpiryBuffer() time.Duration {
	return 0
}

func (s *CookieMetadataStore) metadataCookie(pair *TokenPair) *http.Cookie {
	return &http.Cookie{
		Name:     sessionMetaCookie,
		Value:    fmt.Sprintf("%s:%d", pair.TokenType, pair.ExpiresIn),
		Path:     "/",
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
