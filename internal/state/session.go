package state

import (
	"net/url"
	"strings"
	"sync"
)

const avatarBase = "https://api.multiavatar.com/"

// Session tracks who is signed in. The zero value is signed out.
type Session struct {
	mu   sync.RWMutex
	user *User
}

// Login signs in under name. The avatar URL is derived from the name.
func (s *Session) Login(name string) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, ErrEmptyName
	}
	u := User{Name: name, Avatar: avatarBase + url.PathEscape(name) + ".svg"}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return u, nil
}

func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// User returns the signed-in user, if any.
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Session) SignedIn() bool {
	_, ok := s.User()
	return ok
}
