package debugdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/canscope/internal/symbols"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "names.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	names := symbols.NewDebugNames()
	home := symbols.FirstUserModule
	table := symbols.NewIdentIDsFrom("main", "x")
	unique := table.GenUnique()
	names.RegisterModule(home, "Main")
	require.True(t, names.Register(home, table))

	runID, err := db.SaveRun(ctx, names)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, runID)

	loaded, err := db.LoadRun(ctx, runID)
	require.NoError(t, err)

	if diff := cmp.Diff(names.Modules(), loaded.Modules()); diff != "" {
		t.Errorf("modules (-saved +loaded):\n%s", diff)
	}
	for _, id := range names.Modules() {
		if diff := cmp.Diff(names.Idents(id), loaded.Idents(id)); diff != "" {
			t.Errorf("idents of %d (-saved +loaded):\n%s", id, diff)
		}
	}

	require.Equal(t, "Main.x", loaded.SymbolName(symbols.NewSymbol(home, 1)))
	require.Equal(t, names.SymbolName(symbols.NewSymbol(home, unique)), loaded.SymbolName(symbols.NewSymbol(home, unique)))
	require.Equal(t, "List.product", loaded.SymbolName(symbols.ListProduct))
}

func TestRunsAreSeparate(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	first := symbols.NewDebugNames()
	first.RegisterModule(symbols.FirstUserModule, "A")
	first.RegisterNames(symbols.FirstUserModule, []symbols.Ident{"a"})
	second := symbols.NewDebugNames()
	second.RegisterModule(symbols.FirstUserModule, "B")
	second.RegisterNames(symbols.FirstUserModule, []symbols.Ident{"b", "c"})

	id1, err := db.SaveRun(ctx, first)
	require.NoError(t, err)
	id2, err := db.SaveRun(ctx, second)
	require.NoError(t, err)

	runs, err := db.Runs(ctx)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{id1, id2}, runs)

	got, err := db.LoadRun(ctx, id2)
	require.NoError(t, err)
	name, _ := got.ModuleName(symbols.FirstUserModule)
	require.Equal(t, "B", name)
	require.Equal(t, []symbols.Ident{"b", "c"}, got.Idents(symbols.FirstUserModule))
}

func TestLoadUnknownRun(t *testing.T) {
	db := openTemp(t)
	_, err := db.LoadRun(context.Background(), uuid.New())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrRunNotFound))
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "names.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	id, err := db.SaveRun(ctx, symbols.NewDebugNames())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.LoadRun(ctx, id)
	require.NoError(t, err)
}

func TestLoadModulesReadsEveryRow(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	names := symbols.NewDebugNames()
	names.RegisterModule(symbols.FirstUserModule+1, "B")
	names.RegisterNames(symbols.FirstUserModule+1, []symbols.Ident{"b"})
	names.RegisterModule(symbols.FirstUserModule, "A")
	names.RegisterNames(symbols.FirstUserModule, []symbols.Ident{"a"})
	runID, err := db.SaveRun(ctx, names)
	require.NoError(t, err)

	modules, err := db.loadModules(ctx, runID)
	require.NoError(t, err)
	require.Len(t, modules, len(names.Modules()))
	last := modules[len(modules)-1]
	require.Equal(t, storedModule{id: symbols.FirstUserModule + 1, name: "B"}, last)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = db.loadModules(canceled, runID)
	require.ErrorIs(t, err, context.Canceled)
}
