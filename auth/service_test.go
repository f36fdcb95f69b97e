package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roadmapapp/go-auth-client/auth"
	"github.com/roadmapapp/go-auth-client/authsync"
	"github.com/roadmapapp/go-auth-client/gateway"
	"github.com/roadmapapp/go-auth-client/gateway/gatewayfakes"
	errs "github.com/roadmapapp/go-auth-client/internal/errors"
	"github.com/roadmapapp/go-auth-client/internal/utils"
	"github.com/roadmapapp/go-auth-client/profile"
	"github.com/roadmapapp/go-auth-client/session"
)

const (
	testEmail    = "john.doe@example.com"
	testPassword = "password123"
	testTimeout  = 2 * time.Second
	pollInterval = 5 * time.Millisecond
)

// testFixture holds all test dependencies
type testFixture struct {
	gw      *gatewayfakes.FakeGateway
	sync    *authsync.Synchronizer
	service *auth.Service
	user    profile.Profile
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	gw := gatewayfakes.NewFakeGateway()

	p := profile.New("")
	p.Username = utils.Ptr("johndoe")
	p.FullName = utils.Ptr("John Doe")
	p.Level = 3
	p.TotalXP = 420
	p.CurrentStreak = 7
	p.LongestStreak = 12
	seeded, err := gw.SeedUser(testEmail, testPassword, p)
	require.NoError(t, err)

	sync := authsync.New(gw)
	sync.Start(context.Background())
	t.Cleanup(sync.Close)
	require.Eventually(t, func() bool {
		return sync.Current().Status == authsync.StatusSignedOut
	}, testTimeout, pollInterval)

	service, err := auth.NewService(auth.Deps{
		Auth:     gw,
		Profiles: gw,
		Sync:     sync,
	})
	require.NoError(t, err)

	return &testFixture{gw: gw, sync: sync, service: service, user: seeded}
}

func recvResolved(t *testing.T, resolved <-chan auth.Resolved) auth.Resolved {
	t.Helper()

	select {
	case r, ok := <-resolved:
		require.True(t, ok, "resolved channel closed unexpectedly")
		return r
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for resolved state")
		return auth.Resolved{}
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	gw := gatewayfakes.NewFakeGateway()
	sync := authsync.New(gw)

	_, err := auth.NewService(auth.Deps{Profiles: gw, Sync: sync})
	require.Error(t, err)

	_, err = auth.NewService(auth.Deps{Auth: gw, Sync: sync})
	require.Error(t, err)

	_, err = auth.NewService(auth.Deps{Auth: gw, Profiles: gw})
	require.Error(t, err)
}

func TestSignInRejectsMalformedEmailBeforeAnyBackendCall(t *testing.T) {
	f := setupTestFixture(t)
	calls := f.gw.TotalCalls()

	_, _, err := f.service.SignIn(context.Background(), "bad-email", "123456")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	require.Equal(t, calls, f.gw.TotalCalls())
}

func TestSignInRejectsShortPasswordBeforeAnyBackendCall(t *testing.T) {
	f := setupTestFixture(t)
	calls := f.gw.TotalCalls()

	_, _, err := f.service.SignIn(context.Background(), "a@b.com", "short")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	require.Equal(t, calls, f.gw.TotalCalls())
}

func TestSignInRejectedByBackend(t *testing.T) {
	f := setupTestFixture(t)

	_, _, err := f.service.SignIn(context.Background(), testEmail, "wrongpassword")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	require.Equal(t, 1, f.gw.Calls("SignIn"))
}

func TestSignInTransportFailureReportsInvalidCredentials(t *testing.T) {
	f := setupTestFixture(t)
	f.gw.FailSignIn(errs.Wrapf(errs.ErrNetwork, "connection refused"))

	_, _, err := f.service.SignIn(context.Background(), testEmail, testPassword)
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestSignInReturnsSessionAndProfile(t *testing.T) {
	f := setupTestFixture(t)

	sess, prof, err := f.service.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.Equal(t, f.user.ID, sess.UserID)
	require.NotEmpty(t, sess.AccessToken)
	require.True(t, prof.Equal(f.user))

	require.Eventually(t, func() bool {
		current := f.sync.Current()
		return current.Status == authsync.StatusSignedIn && current.Session.UserID == f.user.ID
	}, testTimeout, pollInterval)
}

func TestSignOutReportsSignedOut(t *testing.T) {
	f := setupTestFixture(t)

	_, _, err := f.service.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return f.sync.Current().Status == authsync.StatusSignedIn
	}, testTimeout, pollInterval)

	require.NoError(t, f.service.SignOut(context.Background()))
	require.Eventually(t, func() bool {
		return f.sync.Current().Status == authsync.StatusSignedOut
	}, testTimeout, pollInterval)
}

func TestSignOutFailureMapsToTaxonomy(t *testing.T) {
	f := setupTestFixture(t)

	f.gw.FailSignOut(errors.New("session already revoked"))
	err := f.service.SignOut(context.Background())
	require.ErrorIs(t, err, errs.ErrUnknown)

	f.gw.FailSignOut(errs.Wrapf(errs.ErrNetwork, "connection reset"))
	err = f.service.SignOut(context.Background())
	require.ErrorIs(t, err, errs.ErrNetwork)
}

func TestCurrentUserWithoutSession(t *testing.T) {
	f := setupTestFixture(t)

	prof, err := f.service.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Nil(t, prof)
}

func TestCurrentUserIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)

	_, _, err := f.service.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	first, err := f.service.CurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := f.service.CurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, second)

	require.True(t, first.Equal(*second))
}

func TestCurrentUserPropagatesFetchFailure(t *testing.T) {
	f := setupTestFixture(t)

	_, _, err := f.service.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	f.gw.FailFetchProfile(errs.ErrUserNotFound)
	_, err = f.service.CurrentUser(context.Background())
	require.ErrorIs(t, err, errs.ErrUserNotFound)
}

func TestObserveAuthStateResolvesEventSequence(t *testing.T) {
	f := setupTestFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	resolved := f.service.ObserveAuthState(ctx)

	// Latest determination replays first: signed out.
	require.Equal(t, auth.ResolvedUnauthenticated, recvResolved(t, resolved).Status)

	sess := session.Session{UserID: f.user.ID, AccessToken: "tok"}
	f.gw.Emit(gateway.Event{Kind: gateway.EventSignedIn, Session: &sess})

	r := recvResolved(t, resolved)
	require.Equal(t, auth.ResolvedAuthenticated, r.Status)
	require.NotNil(t, r.Profile)
	require.True(t, r.Profile.Equal(f.user))
}

func TestObserveAuthStateSurfacesProfileFetchFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.gw.FailFetchProfile(errs.Wrapf(errs.ErrNetwork, "profiles unavailable"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	resolved := f.service.ObserveAuthState(ctx)
	require.Equal(t, auth.ResolvedUnauthenticated, recvResolved(t, resolved).Status)

	sess := session.Session{UserID: f.user.ID, AccessToken: "tok"}
	f.gw.Emit(gateway.Event{Kind: gateway.EventSignedIn, Session: &sess})

	r := recvResolved(t, resolved)
	require.Equal(t, auth.ResolvedError, r.Status)
	require.ErrorIs(t, r.Err, errs.ErrNetwork)
}

func TestObserveAuthStateStopsOnCancel(t *testing.T) {
	f := setupTestFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	resolved := f.service.ObserveAuthState(ctx)
	require.Equal(t, auth.ResolvedUnauthenticated, recvResolved(t, resolved).Status)

	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-resolved:
			return !ok
		default:
			return false
		}
	}, testTimeout, pollInterval)

	// The feed keeps producing; the cancelled stream must stay silent and
	// the synchronizer must keep working.
	sess := session.Session{UserID: f.user.ID, AccessToken: "tok"}
	f.gw.Emit(gateway.Event{Kind: gateway.EventSignedIn, Session: &sess})
	require.Eventually(t, func() bool {
		return f.sync.Current().Status == authsync.StatusSignedIn
	}, testTimeout, pollInterval)
}

func TestUpdateProfileReturnsStoredRepresentation(t *testing.T) {
	f := setupTestFixture(t)

	updated := f.user
	updated.TotalXP = 1000
	updated.CurrentStreak = 8

	stored, err := f.service.UpdateProfile(context.Background(), updated)
	require.NoError(t, err)
	require.Equal(t, 1000, stored.TotalXP)
	require.Equal(t, 8, stored.CurrentStreak)

	fetched, err := f.gw.FetchProfile(context.Background(), f.user.ID)
	require.NoError(t, err)
	require.Equal(t, 1000, fetched.TotalXP)
}

func TestDeleteAccountRemovesProfileAndSignsOut(t *testing.T) {
	f := setupTestFixture(t)

	_, _, err := f.service.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteAccount(context.Background()))

	_, err = f.gw.FetchProfile(context.Background(), f.user.ID)
	require.ErrorIs(t, err, errs.ErrUserNotFound)

	require.Eventually(t, func() bool {
		return f.sync.Current().Status == authsync.StatusSignedOut
	}, testTimeout, pollInterval)
}

func TestDeleteAccountWithoutSession(t *testing.T) {
	f := setupTestFixture(t)

	err := f.service.DeleteAccount(context.Background())
	require.ErrorIs(t, err, errs.ErrUnknown)
}
