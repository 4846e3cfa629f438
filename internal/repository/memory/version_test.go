package memory

import (
	"context"
	"errors"
	"testing"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
)

func TestVersionRepository_AppendEnforcesSequence(t *testing.T) {
	repo := NewVersionRepository()
	ctx := context.Background()
	key := models.NewFileKey(nil, "f.txt")

	if err := repo.Append(ctx, &models.FileVersion{Filename: "f.txt", Version: 2, Operation: models.OperationCreate}); err == nil {
		t.Fatal("Append(v2) on empty chain succeeded")
	}
	if err := repo.Append(ctx, &models.FileVersion{Filename: "f.txt", Version: 1, Operation: models.OperationCreate}); err != nil {
		t.Fatalf("Append(v1): %v", err)
	}
	if err := repo.Append(ctx, &models.FileVersion{Filename: "f.txt", Version: 1, Operation: models.OperationUpdate}); err == nil {
		t.Fatal("duplicate Append(v1) succeeded")
	}

	latest, err := repo.Latest(ctx, key)
	if err != nil || latest == nil || latest.Version != 1 {
		t.Fatalf("Latest = %+v, %v; want v1", latest, err)
	}
}

func TestVersionRepository_Lookups(t *testing.T) {
	repo := NewVersionRepository()
	ctx := context.Background()
	folder := int64(3)

	records := []models.FileVersion{
		{Filename: "b.txt", Version: 1, Operation: models.OperationCreate},
		{Filename: "a.txt", FolderID: &folder, Version: 1, Operation: models.OperationCreate},
		{Filename: "a.txt", FolderID: &folder, Version: 2, Operation: models.OperationDelete},
	}
	for i := range records {
		if err := repo.Append(ctx, &records[i]); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	key := models.NewFileKey(&folder, "a.txt")

	chain, err := repo.ListByKey(ctx, key)
	if err != nil || len(chain) != 2 {
		t.Fatalf("ListByKey = %d records, %v; want 2", len(chain), err)
	}

	if _, err := repo.Get(ctx, key, 3); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get(v3): got %v, want ErrNotFound", err)
	}

	missing, err := repo.Latest(ctx, models.NewFileKey(nil, "a.txt"))
	if err != nil || missing != nil {
		t.Errorf("Latest(root a.txt) = %+v, %v; want nil, nil", missing, err)
	}

	all, err := repo.ListAll(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListAll = %d records, %v; want 3", len(all), err)
	}
	// Root (0/) sorts before folder 3
	if all[0].Filename != "b.txt" {
		t.Errorf("ListAll[0] = %s, want b.txt", all[0].Filename)
	}
}
