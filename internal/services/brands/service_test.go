package brands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandguard/internal/adapters/memory"
	"brandguard/internal/domain"
)

func TestRegister(t *testing.T) {
	svc := New(memory.New())
	ctx := context.Background()

	b, err := svc.Register(ctx, " Monster Casino ", "https://www.monstercasino.co.uk/")
	require.NoError(t, err)
	assert.Equal(t, "Monster Casino", b.Name)
	assert.Equal(t, "monstercasino.co.uk", b.Domain)

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRegisterValidation(t *testing.T) {
	svc := New(memory.New())
	_, err := svc.Register(context.Background(), "", "example.com")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.Register(context.Background(), "X", "localhost")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
