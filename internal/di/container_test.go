package di

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartwardrobe/wardrobe-server/internal/api"
	"github.com/smartwardrobe/wardrobe-server/internal/config"
	"github.com/smartwardrobe/wardrobe-server/internal/di/providers"
	"github.com/smartwardrobe/wardrobe-server/internal/inventory"
	"github.com/smartwardrobe/wardrobe-server/internal/media/images"
	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

func serverArgs(dir, driver string) []string {
	return []string{
		"--env-file", "",
		"--data-path", dir,
		"--store", driver,
		"--port", "0",
		"--log-level", "error",
	}
}

func TestContainer_Bootstrap(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverBadger} {
		t.Run(driver, func(t *testing.T) {
			injector := NewContainer(serverArgs(t.TempDir(), driver))
			require.NoError(t, Bootstrap(injector))

			records := do.MustInvoke[*providers.RecordStoreHandle](injector)
			assert.Equal(t, driver, records.Driver)

			row, err := records.Insert(context.Background(), store.TableSections, store.Row{store.ColName: "Closet"})
			require.NoError(t, err)
			assert.NotEmpty(t, row[store.ColID])

			srv := do.MustInvoke[*providers.HTTPServerHandle](injector)
			assert.Equal(t, ":0", srv.Addr)

			injector.Shutdown()
		})
	}
}

func TestContainer_BadConfig(t *testing.T) {
	injector := NewContainer([]string{"--env-file", "", "--store", "postgres"})
	assert.Error(t, Bootstrap(injector))
}

func TestClientContainer(t *testing.T) {
	dir := t.TempDir()

	backend := NewContainer(serverArgs(dir, config.DriverSQLite))
	records := do.MustInvoke[*providers.RecordStoreHandle](backend)
	objects := do.MustInvoke[*images.Storage](backend)
	t.Cleanup(func() { backend.Shutdown() })

	srv := httptest.NewServer(api.NewServer(records.Records, objects, nil, api.Options{}, do.MustInvoke[*slog.Logger](backend)))
	t.Cleanup(srv.Close)

	client := NewClientContainer([]string{"--env-file", "", "--data-path", dir, "--server-url", srv.URL, "--log-level", "error"})
	t.Cleanup(func() { client.Shutdown() })

	inv := do.MustInvoke[*inventory.Inventory](client)
	require.NoError(t, inv.Load(context.Background()))

	section, err := inv.CreateSection(context.Background(), "Closet")
	require.NoError(t, err)
	assert.Equal(t, "Closet", section.Name)

	rows, err := records.Select(context.Background(), store.TableSections, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
