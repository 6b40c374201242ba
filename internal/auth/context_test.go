package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserIDFromContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, UserIDFromContext(context.Background()))

	ctx := ContextWithUserID(context.Background(), "01HZXUSER")
	assert.Equal(t, "01HZXUSER", UserIDFromContext(ctx))
	assert.Equal(t, "01HZXUSER", MustUserIDFromContext(ctx))
}

func TestUserIDFromContext_IgnoresForeignStringKey(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "user_id", "intruder")
	assert.Empty(t, UserIDFromContext(ctx))
}

func TestMustUserIDFromContext_Panics(t *testing.T) {
	t.Parallel()

	assert.PanicsWithValue(t, "auth: no user id in request context", func() {
		MustUserIDFromContext(context.Background())
	})
}
