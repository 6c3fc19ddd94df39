//go:build integration

// Package dbtest starts a disposable MongoDB for store integration tests.
package dbtest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"itinera/db"
)

// Collections runs a mongo:7 container for the test and returns indexed
// collections in a database named after it. Everything is torn down on cleanup.
func Collections(t *testing.T) *db.Collections {
	t.Helper()
	ctx := context.Background()

	container, err := tcmongo.Run(ctx,
		"mongo:7",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Waiting for connections").
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	if len(name) > 40 {
		name = name[:40]
	}
	colls, err := db.Connect(ctx, uri, name, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = colls.Disconnect(context.Background()) })
	return colls
}
