package adminauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubProvider struct {
	user  *User
	err   error
	delay time.Duration
	panic string
}

func (p *stubProvider) GetUser(ctx context.Context) (*User, error) {
	if p.panic != "" {
		panic(p.panic)
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.user, p.err
}

func TestNormalizeAllowList(t *testing.T) {
	assert.Equal(t,
		[]string{"admin@example.com", "second@example.com"},
		NormalizeAllowList(" Admin@Example.com , second@example.com ,, "),
	)
	assert.Empty(t, NormalizeAllowList(""))
}

func TestCheckAccess_Admin(t *testing.T) {
	provider := &stubProvider{user: &User{ID: "u1", Email: "admin@example.com"}}
	gate := NewGate("admin@example.com", provider, time.Second)

	result := gate.CheckAccess(context.Background())
	assert.True(t, result.IsAdmin)
	assert.Equal(t, "admin@example.com", result.User.Email)
	assert.Empty(t, result.Error)
}

func TestCheckAccess_CaseAndWhitespaceInsensitive(t *testing.T) {
	provider := &stubProvider{user: &User{ID: "u1", Email: "admin@example.com"}}
	gate := NewGate(" Admin@Example.com ", provider, time.Second)

	result := gate.CheckAccess(context.Background())
	assert.True(t, result.IsAdmin)
}

func TestCheckAccess_AccessDenied(t *testing.T) {
	provider := &stubProvider{user: &User{ID: "u2", Email: "visitor@example.com"}}
	gate := NewGate("admin@example.com", provider, time.Second)

	result := gate.CheckAccess(context.Background())
	assert.False(t, result.IsAdmin)
	assert.Nil(t, result.User, "user must be explicitly nil on denial")
	assert.Equal(t, ReasonAccessDenied, result.Error)
}

func TestCheckAccess_NotAuthenticated(t *testing.T) {
	t.Run("lookup error", func(t *testing.T) {
		provider := &stubProvider{err: errors.New("invalid token")}
		gate := NewGate("admin@example.com", provider, time.Second)
		result := gate.CheckAccess(context.Background())
		assert.False(t, result.IsAdmin)
		assert.Equal(t, ReasonNotAuthenticated, result.Error)
	})

	t.Run("no user", func(t *testing.T) {
		provider := &stubProvider{}
		gate := NewGate("admin@example.com", provider, time.Second)
		result := gate.CheckAccess(context.Background())
		assert.False(t, result.IsAdmin)
		assert.Equal(t, ReasonNotAuthenticated, result.Error)
	})
}

func TestCheckAccess_Timeout(t *testing.T) {
	// The provider would answer with an admin, but only after the deadline.
	provider := &stubProvider{
		user:  &User{ID: "u1", Email: "admin@example.com"},
		delay: 200 * time.Millisecond,
	}
	gate := NewGate("admin@example.com", provider, 20*time.Millisecond)

	start := time.Now()
	result := gate.CheckAccess(context.Background())
	assert.False(t, result.IsAdmin)
	assert.Equal(t, ReasonTimeout, result.Error)
	assert.Less(t, time.Since(start), 150*time.Millisecond, "check must return at the deadline, not after the lookup")
}

func TestCheckAccess_CancelledCallerIsNotATimeout(t *testing.T) {
	// The caller goes away before the gate's deadline; the result must not
	// claim the identity lookup timed out.
	provider := &stubProvider{
		user:  &User{ID: "u1", Email: "admin@example.com"},
		delay: 500 * time.Millisecond,
	}
	gate := NewGate("admin@example.com", provider, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	result := gate.CheckAccess(ctx)
	assert.False(t, result.IsAdmin)
	assert.Equal(t, ReasonNotAuthenticated, result.Error)
}

func TestCheckAccess_PanicReportedAsReason(t *testing.T) {
	provider := &stubProvider{panic: "connection pool exhausted"}
	gate := NewGate("admin@example.com", provider, time.Second)

	result := gate.CheckAccess(context.Background())
	assert.False(t, result.IsAdmin)
	assert.Equal(t, "connection pool exhausted", result.Error)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", BearerToken("Bearer abc.def.ghi"))
	assert.Equal(t, "abc", BearerToken("bearer abc"))
	assert.Equal(t, "", BearerToken(""))
	assert.Equal(t, "", BearerToken("Basic dXNlcg=="))
	assert.Equal(t, "", BearerToken("Bearer "))
}
