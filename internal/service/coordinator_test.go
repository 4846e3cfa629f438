package service

import (
	"context"
	"errors"
	"testing"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
	"filevault/internal/repository/memory"
)

// Create, update, delete inside a folder, then inspect history and listings
func TestFileService_UploadUpdateDelete(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()
	docs := core.mustCreateFolder(t, "docs", nil)

	first := core.mustUpload(t, &docs.ID, "report.txt", "hi")
	if first.Version != 1 || first.Operation != models.OperationCreate {
		t.Fatalf("first upload = v%d %s, want v1 create", first.Version, first.Operation)
	}
	if first.Message != "file 'report.txt' created successfully" {
		t.Errorf("message = %q", first.Message)
	}

	second := core.mustUpload(t, &docs.ID, "report.txt", "bye")
	if second.Version != 2 || second.Operation != models.OperationUpdate {
		t.Fatalf("second upload = v%d %s, want v2 update", second.Version, second.Operation)
	}

	memo := "cleanup"
	deleted, err := core.files.Delete(ctx, &services.DeleteRequest{Filename: "report.txt", FolderID: &docs.ID, Memo: &memo})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.Version != 3 || deleted.Operation != models.OperationDelete {
		t.Fatalf("delete = v%d %s, want v3 delete", deleted.Version, deleted.Operation)
	}
	if deleted.Memo == nil || *deleted.Memo != memo {
		t.Errorf("delete memo = %v, want %q", deleted.Memo, memo)
	}

	files, err := core.files.ListFiles(ctx, &docs.ID)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("ListFiles = %+v, want empty", files)
	}

	versions, err := core.files.ListVersions(ctx, "report.txt", &docs.ID)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	wantOps := []models.Operation{models.OperationCreate, models.OperationUpdate, models.OperationDelete}
	if len(versions) != len(wantOps) {
		t.Fatalf("ListVersions = %d records, want %d", len(versions), len(wantOps))
	}
	for i, op := range wantOps {
		if versions[i].Version != i+1 || versions[i].Operation != op {
			t.Errorf("versions[%d] = v%d %s, want v%d %s", i, versions[i].Version, versions[i].Operation, i+1, op)
		}
	}
}

// Version-addressed downloads keep working after a delete
func TestFileService_DownloadHistory(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()
	docs := core.mustCreateFolder(t, "docs", nil)

	core.mustUpload(t, &docs.ID, "report.txt", "hi")
	core.mustUpload(t, &docs.ID, "report.txt", "bye")
	if _, err := core.files.Delete(ctx, &services.DeleteRequest{Filename: "report.txt", FolderID: &docs.ID}); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	tests := []struct {
		name        string
		version     *int
		wantContent string
		wantErr     error
	}{
		{name: "version 1", version: ptr(1), wantContent: "hi"},
		{name: "version 2", version: ptr(2), wantContent: "bye"},
		{name: "delete marker", version: ptr(3), wantErr: domain.ErrFileDeletedAtVersion},
		{name: "latest is deleted", version: nil, wantErr: domain.ErrFileDeletedAtVersion},
		{name: "past the end", version: ptr(99), wantErr: domain.ErrVersionNotFound},
		{name: "zero", version: ptr(0), wantErr: domain.ErrVersionNotFound},
		{name: "negative", version: ptr(-1), wantErr: domain.ErrVersionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			download, err := core.files.Download(ctx, &services.DownloadRequest{
				Filename: "report.txt",
				Version:  tt.version,
				FolderID: &docs.ID,
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Download: %v", err)
			}
			if string(download.Content) != tt.wantContent {
				t.Errorf("content = %q, want %q", download.Content, tt.wantContent)
			}
			if download.FileSize != int64(len(tt.wantContent)) {
				t.Errorf("size = %d, want %d", download.FileSize, len(tt.wantContent))
			}
		})
	}
}

func TestFileService_DeleteNeverUploaded(t *testing.T) {
	core := newTestCore(t)

	_, err := core.files.Delete(context.Background(), &services.DeleteRequest{Filename: "ghost.txt"})
	if !errors.Is(err, domain.ErrFileNotFound) {
		t.Fatalf("got %v, want ErrFileNotFound", err)
	}
}

func TestFileService_DeleteTwice(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()
	core.mustUpload(t, nil, "f.txt", "x")

	if _, err := core.files.Delete(ctx, &services.DeleteRequest{Filename: "f.txt"}); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if _, err := core.files.Delete(ctx, &services.DeleteRequest{Filename: "f.txt"}); !errors.Is(err, domain.ErrFileNotFound) {
		t.Fatalf("second Delete: got %v, want ErrFileNotFound", err)
	}
}

func TestFileService_RoundTrip(t *testing.T) {
	core := newTestCore(t)
	content := []byte{0x00, 0xff, 0x10, 'h', 'i', 0x00}
	mimeType := "image/png"

	_, err := core.files.Upload(context.Background(), &services.UploadRequest{
		Filename: "blob.png",
		Content:  content,
		MimeType: &mimeType,
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	download, err := core.files.Download(context.Background(), &services.DownloadRequest{Filename: "blob.png"})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(download.Content) != string(content) {
		t.Errorf("content = %v, want %v", download.Content, content)
	}
	if download.MimeType != mimeType {
		t.Errorf("mime = %q, want %q", download.MimeType, mimeType)
	}
	if download.FileSize != int64(len(content)) {
		t.Errorf("size = %d, want %d", download.FileSize, len(content))
	}

	// Reads do not change state
	again, err := core.files.Download(context.Background(), &services.DownloadRequest{Filename: "blob.png"})
	if err != nil {
		t.Fatalf("second Download: %v", err)
	}
	if again.Version != download.Version || string(again.Content) != string(content) {
		t.Errorf("second download = v%d %v, want v%d %v", again.Version, again.Content, download.Version, content)
	}
}

func TestFileService_DefaultMimeType(t *testing.T) {
	core := newTestCore(t)
	core.mustUpload(t, nil, "data.bin", "raw")

	download, err := core.files.Download(context.Background(), &services.DownloadRequest{Filename: "data.bin"})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if download.MimeType != defaultMimeType {
		t.Errorf("mime = %q, want %q", download.MimeType, defaultMimeType)
	}
}

func TestFileService_SameFilenameInDifferentFolders(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()
	docs := core.mustCreateFolder(t, "docs", nil)
	images := core.mustCreateFolder(t, "images", nil)

	core.mustUpload(t, &docs.ID, "sample.txt", "doc")
	core.mustUpload(t, &docs.ID, "sample.txt", "doc 2")
	result := core.mustUpload(t, &images.ID, "sample.txt", "img")
	if result.Version != 1 || result.Operation != models.OperationCreate {
		t.Errorf("images/sample.txt = v%d %s, want v1 create", result.Version, result.Operation)
	}

	files, err := core.files.ListFiles(ctx, nil)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("ListFiles(all) = %d entries, want 2", len(files))
	}
	for _, f := range files {
		if f.FolderName == nil {
			t.Errorf("entry %s in folder %v has no folder name", f.Filename, f.FolderID)
			continue
		}
		switch *f.FolderID {
		case docs.ID:
			if *f.FolderName != "docs" || f.LatestVersion != 2 {
				t.Errorf("docs entry = %s v%d", *f.FolderName, f.LatestVersion)
			}
		case images.ID:
			if *f.FolderName != "images" || f.LatestVersion != 1 {
				t.Errorf("images entry = %s v%d", *f.FolderName, f.LatestVersion)
			}
		}
	}
}

func TestFileService_UnknownFolder(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()
	missing := ptr(int64(5))

	if _, err := core.files.Upload(ctx, &services.UploadRequest{Filename: "f.txt", Content: []byte("x"), FolderID: missing}); !errors.Is(err, domain.ErrFolderNotFound) {
		t.Errorf("Upload: got %v, want ErrFolderNotFound", err)
	}
	if _, err := core.files.ListFiles(ctx, missing); !errors.Is(err, domain.ErrFolderNotFound) {
		t.Errorf("ListFiles: got %v, want ErrFolderNotFound", err)
	}
	if _, err := core.files.Delete(ctx, &services.DeleteRequest{Filename: "f.txt", FolderID: missing}); !errors.Is(err, domain.ErrFolderNotFound) {
		t.Errorf("Delete: got %v, want ErrFolderNotFound", err)
	}
}

func TestFileService_ValidatesFilename(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()

	for _, name := range []string{"", "  ", "a/b", `a\b`, ".", ".."} {
		if _, err := core.files.Upload(ctx, &services.UploadRequest{Filename: name, Content: []byte("x")}); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Upload(%q): got %v, want ErrValidation", name, err)
		}
	}
}

func TestFileService_ListVersionsUnknownFile(t *testing.T) {
	core := newTestCore(t)

	_, err := core.files.ListVersions(context.Background(), "nope.txt", nil)
	if !errors.Is(err, domain.ErrFileNotFound) {
		t.Fatalf("got %v, want ErrFileNotFound", err)
	}
}

// Reads scoped to a folder that does not exist must not fall through to
// the root-level file of the same name
func TestFileService_ReadsRejectUnknownFolder(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()
	core.mustUpload(t, nil, "secret.txt", "root-content")

	for _, id := range []int64{0, 42} {
		folderID := ptr(id)

		if dl, err := core.files.Download(ctx, &services.DownloadRequest{Filename: "secret.txt", FolderID: folderID}); !errors.Is(err, domain.ErrFolderNotFound) {
			t.Errorf("Download(folder_id=%d) = %v, %v; want ErrFolderNotFound", id, dl, err)
		}
		if versions, err := core.files.ListVersions(ctx, "secret.txt", folderID); !errors.Is(err, domain.ErrFolderNotFound) {
			t.Errorf("ListVersions(folder_id=%d) = %d records, %v; want ErrFolderNotFound", id, len(versions), err)
		}
	}
}

func TestFileService_MissingBlobIsStorageError(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()
	core.mustUpload(t, nil, "f.txt", "x")

	record, err := core.ledger.GetVersion(ctx, models.NewFileKey(nil, "f.txt"), nil)
	if err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
	if err := core.blobs.Delete(ctx, *record.BlobRef); err != nil {
		t.Fatalf("Delete blob: %v", err)
	}

	_, err = core.files.Download(ctx, &services.DownloadRequest{Filename: "f.txt"})
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("got %v, want ErrStorageUnavailable", err)
	}
}

func TestSetupServices_RebuildsCatalogFromLedger(t *testing.T) {
	core := newTestCore(t)
	core.mustUpload(t, nil, "kept.txt", "x")
	core.mustUpload(t, nil, "dropped.txt", "y")
	if _, err := core.files.Delete(context.Background(), &services.DeleteRequest{Filename: "dropped.txt"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// A fresh process over the same stores sees the same listing
	svcs, err := SetupServices(context.Background(), core.folderRepo, core.versionRepo, memory.NewTransactionManager(), core.blobs, testOptions, newTestLogger())
	if err != nil {
		t.Fatalf("SetupServices: %v", err)
	}

	files, err := svcs.Files.ListFiles(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 || files[0].Filename != "kept.txt" {
		t.Fatalf("ListFiles = %+v, want only kept.txt", files)
	}
}
