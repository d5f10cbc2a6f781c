package directory

import (
	"errors"
	"sort"
	"sync"
)

var ErrUsernameTaken = errors.New("username already taken")

// Usernames tracks which display name each connected session has claimed,
// so two scorers can't operate under the same name. A session re-claiming
// its own name is a no-op; claiming a new name releases its old one.
type Usernames struct {
	mu        sync.Mutex
	bySession map[string]string // session id -> name
	byName    map[string]string // name -> session id
}

func NewUsernames() *Usernames {
	return &Usernames{
		bySession: make(map[string]string),
		byName:    make(map[string]string),
	}
}

func (u *Usernames) Claim(sessionID, name string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if holder, taken := u.byName[name]; taken {
		if holder == sessionID {
			return nil
		}
		return ErrUsernameTaken
	}
	if old, ok := u.bySession[sessionID]; ok {
		delete(u.byName, old)
	}
	u.bySession[sessionID] = name
	u.byName[name] = sessionID
	return nil
}

// Release frees a session's claimed name, typically on disconnect.
func (u *Usernames) Release(sessionID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if name, ok := u.bySession[sessionID]; ok {
		delete(u.byName, name)
		delete(u.bySession, sessionID)
	}
}

// Names returns every claimed name, sorted for stable output.
func (u *Usernames) Names() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	names := make([]string, 0, len(u.byName))
	for name := range u.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
