package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	blobMemory "filevault/internal/blob/memory"
	"filevault/internal/domain/models"
	"filevault/internal/domain/repositories"
	"filevault/internal/domain/services"
	"filevault/internal/repository/memory"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testOptions = Options{
	LockTimeout: time.Second,
	BlobTimeout: time.Second,
}

// testCore wires the real services over in-memory stores
type testCore struct {
	folderRepo  repositories.FolderRepository
	versionRepo repositories.VersionRepository
	blobs       *blobMemory.Store
	folders     services.FolderStore
	catalog     services.FileCatalog
	ledger      services.VersionLedger
	files       services.FileService
}

func newTestCore(t *testing.T) *testCore {
	t.Helper()
	return newTestCoreWith(t, memory.NewVersionRepository(), nil)
}

// newTestCoreWith lets a test swap the version repository or blob store
func newTestCoreWith(t *testing.T, versionRepo repositories.VersionRepository, blobs services.BlobStore) *testCore {
	t.Helper()

	memBlobs := blobMemory.NewStore()
	if blobs == nil {
		blobs = memBlobs
	}

	folderRepo := memory.NewFolderRepository()
	svcs, err := SetupServices(context.Background(), folderRepo, versionRepo, memory.NewTransactionManager(),
		blobs, testOptions, newTestLogger())
	if err != nil {
		t.Fatalf("SetupServices: %v", err)
	}

	return &testCore{
		folderRepo:  folderRepo,
		versionRepo: versionRepo,
		blobs:       memBlobs,
		folders:     svcs.Folders,
		catalog:     svcs.Catalog,
		ledger:      svcs.Ledger,
		files:       svcs.Files,
	}
}

func (c *testCore) mustCreateFolder(t *testing.T, name string, parentID *int64) *models.Folder {
	t.Helper()
	folder, err := c.folders.CreateFolder(context.Background(), &services.CreateFolderRequest{Name: name, ParentID: parentID})
	if err != nil {
		t.Fatalf("CreateFolder(%q): %v", name, err)
	}
	return folder
}

func (c *testCore) mustUpload(t *testing.T, folderID *int64, filename, content string) *services.OperationResult {
	t.Helper()
	result, err := c.files.Upload(context.Background(), &services.UploadRequest{
		Filename: filename,
		Content:  []byte(content),
		FolderID: folderID,
	})
	if err != nil {
		t.Fatalf("Upload(%q): %v", filename, err)
	}
	return result
}

func ptr[T any](v T) *T {
	return &v
}

// failingBlobStore fails every Put and counts calls
type failingBlobStore struct {
	mu   sync.Mutex
	puts int
}

func (f *failingBlobStore) Put(ctx context.Context, data []byte) (string, error) {
	f.mu.Lock()
	f.puts++
	f.mu.Unlock()
	return "", errors.New("disk full")
}

func (f *failingBlobStore) Get(ctx context.Context, ref string) ([]byte, error) {
	return nil, errors.New("disk unreadable")
}

func (f *failingBlobStore) Delete(ctx context.Context, ref string) error {
	return nil
}

// gatedBlobStore blocks Put until release is closed
type gatedBlobStore struct {
	*blobMemory.Store
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedBlobStore() *gatedBlobStore {
	return &gatedBlobStore{
		Store:   blobMemory.NewStore(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedBlobStore) Put(ctx context.Context, data []byte) (string, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.Store.Put(ctx, data)
}

// failingAppendRepo wraps a version repository and rejects every Append
type failingAppendRepo struct {
	repositories.VersionRepository
}

func (f failingAppendRepo) Append(ctx context.Context, v *models.FileVersion) error {
	return errors.New("connection reset")
}
