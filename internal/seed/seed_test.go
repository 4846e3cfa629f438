package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	blobMemory "filevault/internal/blob/memory"
	"filevault/internal/repository/memory"
	"filevault/internal/service"
)

func newTestSeeder(t *testing.T) (*Seeder, *service.Services) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svcs, err := service.SetupServices(
		context.Background(),
		memory.NewFolderRepository(),
		memory.NewVersionRepository(),
		memory.NewTransactionManager(),
		blobMemory.NewStore(),
		service.Options{LockTimeout: time.Second, BlobTimeout: time.Second},
		logger,
	)
	if err != nil {
		t.Fatalf("SetupServices: %v", err)
	}
	return NewSeeder(svcs.Folders, svcs.Files, logger), svcs
}

func TestLoadFixtures(t *testing.T) {
	fixtures, err := LoadFixtures()
	if err != nil {
		t.Fatalf("LoadFixtures: %v", err)
	}
	if len(fixtures.Folders) == 0 || len(fixtures.Files) == 0 {
		t.Fatalf("fixtures are empty: %+v", fixtures)
	}
}

func TestSeeder_SeedIsRepeatable(t *testing.T) {
	seeder, svcs := newTestSeeder(t)
	ctx := context.Background()

	fixtures, err := LoadFixtures()
	if err != nil {
		t.Fatalf("LoadFixtures: %v", err)
	}

	first, err := seeder.Seed(ctx, fixtures)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if first.FoldersCreated != len(fixtures.Folders) || first.FilesCreated != len(fixtures.Files) {
		t.Errorf("first run = %+v", first)
	}

	if err := seeder.Verify(ctx, fixtures); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	second, err := seeder.Seed(ctx, fixtures)
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if second.FoldersCreated != 0 || second.FilesCreated != 0 || second.FilesSkipped != len(fixtures.Files) {
		t.Errorf("second run = %+v, want everything skipped", second)
	}

	files, err := svcs.Files.ListFiles(ctx, nil)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != len(fixtures.Files) {
		t.Errorf("ListFiles = %d entries, want %d", len(files), len(fixtures.Files))
	}
}

func TestSeeder_NestedFolders(t *testing.T) {
	seeder, svcs := newTestSeeder(t)
	ctx := context.Background()

	fixtures, err := ParseFixtures([]byte(`
folders:
  - name: a
  - name: b
    parent: a
  - name: c
    parent: a/b
files:
  - folder: a/b/c
    filename: deep.txt
    content: deep
`))
	if err != nil {
		t.Fatalf("ParseFixtures: %v", err)
	}

	if _, err := seeder.Seed(ctx, fixtures); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	tree, err := svcs.Folders.FolderTree(ctx)
	if err != nil {
		t.Fatalf("FolderTree: %v", err)
	}
	if len(tree) != 1 || len(tree[0].Children) != 1 || len(tree[0].Children[0].Children) != 1 {
		t.Fatalf("tree shape is wrong: %+v", tree)
	}
	if err := seeder.Verify(ctx, fixtures); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestSeeder_UnknownFolder(t *testing.T) {
	seeder, _ := newTestSeeder(t)

	fixtures := &Fixtures{Files: []FileFixture{{Folder: "missing", Filename: "f.txt", Content: "x"}}}
	if _, err := seeder.Seed(context.Background(), fixtures); err == nil {
		t.Fatal("Seed with an undefined folder succeeded")
	}
}
