package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/stashkeeper-backend/internal/storetest"
	"github.com/angelmondragon/stashkeeper-backend/internal/tracked"
	"github.com/angelmondragon/stashkeeper-backend/pkg/auth"
	"github.com/angelmondragon/stashkeeper-backend/pkg/config"
	"github.com/angelmondragon/stashkeeper-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/stashkeeper-backend/pkg/errors"
)

func setEnv(t *testing.T) string {
	t.Helper()
	dsn := storetest.DSN(t.TempDir())
	t.Setenv("STASHKEEPER_APP_ENV", "dev")
	t.Setenv("STASHKEEPER_USE_SQLITE", "true")
	t.Setenv("STASHKEEPER_AUTO_MIGRATE", "true")
	t.Setenv("STASHKEEPER_DB_DSN", dsn)
	t.Setenv("STASHKEEPER_JWT_SECRET", "cli-secret")
	t.Setenv("STASHKEEPER_JWT_ISSUER", "stashkeeper-cli")
	t.Setenv("STASHKEEPER_CACHE_BACKEND", "memory")
	return dsn
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := newApp()
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	err := root.Execute()
	require.NoError(t, a.close())
	return out.String(), err
}

func TestTokenMint(t *testing.T) {
	setEnv(t)
	user := uuid.New()

	out, err := run(t, "token", "mint", "--user", user.String())
	require.NoError(t, err)

	claims, err := auth.ParseAccessToken(config.JWTConfig{Secret: "cli-secret", Issuer: "stashkeeper-cli"}, strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, user, claims.UserID)

	_, err = run(t, "token", "mint", "--user", "nope")
	assert.Error(t, err)
}

func TestTrackedTransitionAndHistory(t *testing.T) {
	dsn := setEnv(t)
	owner := uuid.New()

	_, err := run(t, "tracked", "history", uuid.NewString(), "--user", owner.String())
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound), "got %v", err)

	item := seedTracked(t, dsn, owner)

	out, err := run(t, "tracked", "transition", item.String(), "in_use", "--user", owner.String(), "--expected", "STORAGE", "--location", "shelf A")
	require.NoError(t, err)
	var moved tracked.TransitionDTO
	require.NoError(t, json.Unmarshal([]byte(out), &moved))
	assert.True(t, moved.Changed)

	out, err = run(t, "tracked", "history", item.String(), "--user", owner.String())
	require.NoError(t, err)
	var periods []tracked.UsagePeriodDTO
	require.NoError(t, json.Unmarshal([]byte(out), &periods))
	require.Len(t, periods, 1)
	assert.Equal(t, "shelf A", *periods[0].Location)

	_, err = run(t, "tracked", "transition", item.String(), "LOST", "--user", owner.String(), "--expected", "STORAGE")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))
}

func TestCacheInvalidateNeedsSharedBackend(t *testing.T) {
	setEnv(t)

	_, err := run(t, "cache", "invalidate", "owner:item")
	assert.ErrorContains(t, err, "unknown tag family")

	_, err = run(t, "cache", "invalidate", "list:tracked_item")
	assert.ErrorContains(t, err, "process local")
}

func seedTracked(t *testing.T, dsn string, owner uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	client, err := db.New(ctx, config.DBConfig{DSN: dsn, Driver: config.DBDriverSQLite}, nil)
	require.NoError(t, err)
	defer client.Close()

	repo := tracked.NewRepository(client.DB())
	engine, err := tracked.NewEngine(repo, client, nil, nil)
	require.NoError(t, err)
	svc, err := tracked.NewService(repo, engine, client, nil, auth.StaticUser(owner), nil)
	require.NoError(t, err)
	item, err := svc.Create(ctx, tracked.CreateTrackedItemInput{Name: "Sunbonnet Sue", Season: "SPRING"})
	require.NoError(t, err)
	return item.ID
}
