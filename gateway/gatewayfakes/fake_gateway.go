package gatewayfakes

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/roadmapapp/go-auth-client/gateway"
	errs "github.com/roadmapapp/go-auth-client/internal/errors"
	"github.com/roadmapapp/go-auth-client/profile"
	"github.com/roadmapapp/go-auth-client/session"
)

var _ gateway.Gateway = (*FakeGateway)(nil)

type fakeUser struct {
	id           string
	passwordHash string
}

// FakeGateway is an in-memory backend double. Seeded users authenticate
// against bcrypt hashes the way the real backend does, events are pushed
// with Emit, and every operation is counted so tests can assert that a
// code path never reached the backend.
type FakeGateway struct {
	lock sync.RWMutex

	usersByEmail map[string]*fakeUser
	profiles     map[string]profile.Profile
	current      *session.Session

	signInErr         error
	signOutErr        error
	currentSessionErr error
	fetchProfileErr   error
	updateProfileErr  error
	deleteProfileErr  error

	calls map[string]int

	subscribers map[int]chan gateway.Event
	nextSubID   int
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		usersByEmail: make(map[string]*fakeUser),
		profiles:     make(map[string]profile.Profile),
		calls:        make(map[string]int),
		subscribers:  make(map[int]chan gateway.Event),
	}
}

// SeedUser registers an account and its profile row. The profile ID is
// generated when empty.
func (g *FakeGateway) SeedUser(email, password string, p profile.Profile) (profile.Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return profile.Profile{}, err
	}

	g.lock.Lock()
	defer g.lock.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	g.usersByEmail[email] = &fakeUser{id: p.ID, passwordHash: string(hash)}
	g.profiles[p.ID] = p
	return p, nil
}

func (g *FakeGateway) SignIn(ctx context.Context, email, password string) (session.Session, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.calls["SignIn"]++
	if g.signInErr != nil {
		return session.Session{}, g.signInErr
	}

	user, ok := g.usersByEmail[email]
	if !ok {
		return session.Session{}, errs.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.passwordHash), []byte(password)) != nil {
		return session.Session{}, errs.ErrInvalidCredentials
	}

	sess := session.Session{
		UserID:       user.id,
		AccessToken:  uuid.New().String(),
		RefreshToken: uuid.New().String(),
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	g.current = &sess
	return sess, nil
}

func (g *FakeGateway) SignOut(ctx context.Context) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.calls["SignOut"]++
	if g.signOutErr != nil {
		return g.signOutErr
	}
	g.current = nil
	return nil
}

func (g *FakeGateway) CurrentSession(ctx context.Context) (*session.Session, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.calls["CurrentSession"]++
	if g.currentSessionErr != nil {
		return nil, g.currentSessionErr
	}
	if g.current == nil {
		return nil, nil
	}
	sess := *g.current
	return &sess, nil
}

func (g *FakeGateway) AuthEvents(ctx context.Context) <-chan gateway.Event {
	g.lock.Lock()
	id := g.nextSubID
	g.nextSubID++
	ch := make(chan gateway.Event, 32)
	g.subscribers[id] = ch
	g.lock.Unlock()

	go func() {
		<-ctx.Done()
		g.lock.Lock()
		defer g.lock.Unlock()
		if sub, ok := g.subscribers[id]; ok {
			delete(g.subscribers, id)
			close(sub)
		}
	}()

	return ch
}

// Emit pushes an event to every open feed subscription.
func (g *FakeGateway) Emit(ev gateway.Event) {
	g.lock.RLock()
	defer g.lock.RUnlock()

	for _, ch := range g.subscribers {
		ch <- ev
	}
}

func (g *FakeGateway) FetchProfile(ctx context.Context, userID string) (profile.Profile, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.calls["FetchProfile"]++
	if g.fetchProfileErr != nil {
		return profile.Profile{}, g.fetchProfileErr
	}
	p, ok := g.profiles[userID]
	if !ok {
		return profile.Profile{}, errs.ErrUserNotFound
	}
	return p, nil
}

func (g *FakeGateway) UpdateProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.calls["UpdateProfile"]++
	if g.updateProfileErr != nil {
		return profile.Profile{}, g.updateProfileErr
	}
	if _, ok := g.profiles[p.ID]; !ok {
		return profile.Profile{}, errs.ErrUserNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	g.profiles[p.ID] = p
	return p, nil
}

func (g *FakeGateway) DeleteProfile(ctx context.Context, userID string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.calls["DeleteProfile"]++
	if g.deleteProfileErr != nil {
		return g.deleteProfileErr
	}
	delete(g.profiles, userID)
	return nil
}

// SetCurrentSession overrides the session returned by CurrentSession.
func (g *FakeGateway) SetCurrentSession(sess *session.Session) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.current = sess
}

func (g *FakeGateway) FailSignIn(err error)         { g.setErr(&g.signInErr, err) }
func (g *FakeGateway) FailSignOut(err error)        { g.setErr(&g.signOutErr, err) }
func (g *FakeGateway) FailCurrentSession(err error) { g.setErr(&g.currentSessionErr, err) }
func (g *FakeGateway) FailFetchProfile(err error)   { g.setErr(&g.fetchProfileErr, err) }
func (g *FakeGateway) FailUpdateProfile(err error)  { g.setErr(&g.updateProfileErr, err) }
func (g *FakeGateway) FailDeleteProfile(err error)  { g.setErr(&g.deleteProfileErr, err) }

func (g *FakeGateway) setErr(target *error, err error) {
	g.lock.Lock()
	defer g.lock.Unlock()
	*target = err
}

// Calls returns how many times the named operation was invoked.
func (g *FakeGateway) Calls(operation string) int {
	g.lock.RLock()
	defer g.lock.RUnlock()
	return g.calls[operation]
}

// TotalCalls returns the number of backend operations invoked across all
// endpoints.
func (g *FakeGateway) TotalCalls() int {
	g.lock.RLock()
	defer g.lock.RUnlock()

	total := 0
	for _, n := range g.calls {
		total += n
	}
	return total
}
