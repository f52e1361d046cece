package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
)

func TestStore_InitialState(t *testing.T) {
	s := NewStore()
	st := s.Snapshot()
	assert.Nil(t, st.Identity)
	assert.True(t, st.Loading)
	assert.False(t, s.Resolved())
}

func TestStore_SetLoadingFalseBeforeResolution(t *testing.T) {
	s := NewStore()
	calls := 0
	s.Subscribe(func(domainauth.State) { calls++ })

	err := s.SetLoading(false)
	require.ErrorIs(t, err, ErrUnresolved)
	assert.True(t, s.Snapshot().Loading)
	assert.Zero(t, calls)
}

func TestStore_SetIdentityThenLoading(t *testing.T) {
	s := NewStore()
	var seen []domainauth.State
	s.Subscribe(func(st domainauth.State) { seen = append(seen, st) })

	s.SetIdentity(&domainauth.Identity{ID: "u1", Email: "a@b.c", Role: domainauth.RoleUser})
	require.NoError(t, s.SetLoading(false))

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Loading)
	assert.Equal(t, "u1", seen[0].Identity.ID)
	assert.False(t, seen[1].Loading)
	assert.True(t, s.Snapshot().Authenticated())
}

func TestStore_LoadingNeverReturns(t *testing.T) {
	s := NewStore()
	s.Resolve(nil)

	err := s.SetLoading(true)
	require.ErrorIs(t, err, ErrLoadingRegression)
	assert.Equal(t, domainauth.State{}, s.Snapshot())
}

func TestStore_ResolveIsSingleTransition(t *testing.T) {
	s := NewStore()
	var seen []domainauth.State
	s.Subscribe(func(st domainauth.State) { seen = append(seen, st) })

	s.Resolve(&domainauth.Identity{ID: "a1", Role: domainauth.RoleAdmin})

	require.Len(t, seen, 1)
	assert.False(t, seen[0].Loading)
	assert.True(t, seen[0].Identity.IsAdmin())
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := NewStore()
	id := &domainauth.Identity{ID: "u1", Role: domainauth.RoleUser}
	s.Resolve(id)

	id.Role = domainauth.RoleAdmin
	snap := s.Snapshot()
	snap.Identity.Role = domainauth.RoleAdmin

	assert.Equal(t, domainauth.RoleUser, s.Identity().Role)
}

func TestStore_SubscriptionOrderAndUnsubscribe(t *testing.T) {
	s := NewStore()
	var order []string
	s.Subscribe(func(domainauth.State) { order = append(order, "first") })
	unsub := s.Subscribe(func(domainauth.State) { order = append(order, "second") })
	s.Subscribe(func(domainauth.State) { order = append(order, "third") })

	s.Resolve(nil)
	assert.Equal(t, []string{"first", "second", "third"}, order)

	unsub()
	unsub()
	order = nil
	s.SetIdentity(nil)
	assert.Equal(t, []string{"first", "third"}, order)
}

func TestStore_ListenerMayMutate(t *testing.T) {
	s := NewStore()
	var seen []domainauth.State
	s.Subscribe(func(st domainauth.State) {
		seen = append(seen, st)
		if st.Loading && st.Identity != nil {
			require.NoError(t, s.SetLoading(false))
		}
	})

	s.SetIdentity(&domainauth.Identity{ID: "u1", Role: domainauth.RoleUser})

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Loading)
	assert.False(t, seen[1].Loading)
}

func TestStore_ConcurrentMutations(t *testing.T) {
	s := NewStore()
	var mu sync.Mutex
	count := 0
	s.Subscribe(func(st domainauth.State) {
		mu.Lock()
		count++
		mu.Unlock()
		assert.False(t, st.Loading)
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.Resolve(&domainauth.Identity{ID: "u", Role: domainauth.RoleUser})
			} else {
				s.Resolve(nil)
			}
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 50, count)
}
