package users

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

func TestInMemory_CreateAndFind(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Account{Email: accountEmail, Username: accountUsername, PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	byEmail, err := repo.FindByEmail(ctx, accountEmail)
	require.NoError(t, err)
	assert.Equal(t, created, byEmail)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, byID)
}

func TestInMemory_ReturnsCopies(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Account{Email: accountEmail, Username: accountUsername})
	require.NoError(t, err)
	created.Username = "changed"

	again, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, accountUsername, again.Username)
}

func TestInMemory_NotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestInMemory_Conflicts(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.Account{Email: accountEmail, Username: accountUsername})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.Account{Email: accountEmail, Username: "someone_else"})
	assert.ErrorIs(t, err, common.ErrConflict)

	_, err = repo.Create(ctx, &models.Account{Email: "other@example.com", Username: accountUsername})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestInMemory_ConcurrentCreateSameEmail(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	var ok, conflicts atomic.Int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, &models.Account{Email: accountEmail, Username: fmt.Sprintf("user_%02d", i)})
			switch {
			case err == nil:
				ok.Add(1)
			case err == common.ErrConflict:
				conflicts.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(31), conflicts.Load())
}
