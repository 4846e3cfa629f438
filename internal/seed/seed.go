// Package seed loads sample folders and files through the core services
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/services"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// Fixtures describes the sample data set
type Fixtures struct {
	Folders []FolderFixture `yaml:"folders"`
	Files   []FileFixture   `yaml:"files"`
}

// FolderFixture is one folder, optionally nested under another fixture folder
type FolderFixture struct {
	Name   string `yaml:"name"`
	Parent string `yaml:"parent"`
}

// FileFixture is one file with its create content and later updates
type FileFixture struct {
	Folder   string          `yaml:"folder"`
	Filename string          `yaml:"filename"`
	MimeType string          `yaml:"mime_type"`
	Memo     string          `yaml:"memo"`
	Content  string          `yaml:"content"`
	Updates  []UpdateFixture `yaml:"updates"`
}

// UpdateFixture is a later version of a FileFixture
type UpdateFixture struct {
	Memo    string `yaml:"memo"`
	Content string `yaml:"content"`
}

// LoadFixtures parses the embedded fixture set
func LoadFixtures() (*Fixtures, error) {
	return ParseFixtures(fixturesYAML)
}

// ParseFixtures parses a fixture document
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

// Result summarizes a seeding run
type Result struct {
	FoldersCreated int
	FilesCreated   int
	FilesSkipped   int
	Versions       int
}

// Seeder writes fixtures through the folder store and file service
type Seeder struct {
	folders services.FolderStore
	files   services.FileService
	logger  *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(folders services.FolderStore, files services.FileService, logger *slog.Logger) *Seeder {
	return &Seeder{
		folders: folders,
		files:   files,
		logger:  logger,
	}
}

// Seed creates missing folders and files. Files that already have history
// are left alone, so running it twice is harmless.
func (s *Seeder) Seed(ctx context.Context, fixtures *Fixtures) (*Result, error) {
	result := &Result{}

	ids, err := s.seedFolders(ctx, fixtures.Folders, result)
	if err != nil {
		return result, err
	}

	for _, file := range fixtures.Files {
		folderID, err := resolveFolder(ids, file.Folder)
		if err != nil {
			return result, err
		}

		if _, err := s.files.ListVersions(ctx, file.Filename, folderID); err == nil {
			s.logger.Info("file already seeded", "folder", file.Folder, "filename", file.Filename)
			result.FilesSkipped++
			continue
		} else if !errors.Is(err, domain.ErrFileNotFound) {
			return result, err
		}

		if err := s.upload(ctx, folderID, file.Filename, file.MimeType, file.Memo, file.Content); err != nil {
			return result, err
		}
		result.Versions++

		for _, update := range file.Updates {
			if err := s.upload(ctx, folderID, file.Filename, file.MimeType, update.Memo, update.Content); err != nil {
				return result, err
			}
			result.Versions++
		}

		result.FilesCreated++
	}

	return result, nil
}

// Verify downloads the latest version of every fixture file in parallel
// and checks the bytes match the last fixture content
func (s *Seeder) Verify(ctx context.Context, fixtures *Fixtures) error {
	ids, err := s.folderIDs(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, file := range fixtures.Files {
		g.Go(func() error {
			folderID, err := resolveFolder(ids, file.Folder)
			if err != nil {
				return err
			}

			download, err := s.files.Download(gctx, &services.DownloadRequest{
				Filename: file.Filename,
				FolderID: folderID,
			})
			if err != nil {
				return fmt.Errorf("download %s/%s: %w", file.Folder, file.Filename, err)
			}

			want := file.Content
			if n := len(file.Updates); n > 0 {
				want = file.Updates[n-1].Content
			}
			if string(download.Content) != want {
				return fmt.Errorf("%s/%s: content mismatch at version %d", file.Folder, file.Filename, download.Version)
			}
			return nil
		})
	}

	return g.Wait()
}

func (s *Seeder) seedFolders(ctx context.Context, fixtures []FolderFixture, result *Result) (map[string]int64, error) {
	ids, err := s.folderIDs(ctx)
	if err != nil {
		return nil, err
	}

	// Fixtures list parents before children
	for _, f := range fixtures {
		path := folderPath(f.Parent, f.Name)
		if _, ok := ids[path]; ok {
			continue
		}

		parentID, err := resolveFolder(ids, f.Parent)
		if err != nil {
			return nil, err
		}

		folder, err := s.folders.CreateFolder(ctx, &services.CreateFolderRequest{
			Name:     f.Name,
			ParentID: parentID,
		})
		if err != nil {
			return nil, fmt.Errorf("create folder %s: %w", path, err)
		}

		ids[path] = folder.ID
		result.FoldersCreated++
		s.logger.Info("folder seeded", "path", path, "id", folder.ID)
	}

	return ids, nil
}

// folderIDs maps slash-joined folder paths to IDs
func (s *Seeder) folderIDs(ctx context.Context) (map[string]int64, error) {
	folders, err := s.folders.ListFolders(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}

	ids := make(map[string]int64, len(folders))
	for _, f := range folders {
		path := f.Name
		for parent := f.ParentID; parent != nil; {
			p, ok := byID[*parent]
			if !ok {
				break
			}
			path = p.Name + "/" + path
			parent = p.ParentID
		}
		ids[path] = f.ID
	}
	return ids, nil
}

func (s *Seeder) upload(ctx context.Context, folderID *int64, filename, mimeType, memo, content string) error {
	req := &services.UploadRequest{
		Filename: filename,
		Content:  []byte(content),
		FolderID: folderID,
	}
	if memo != "" {
		req.Memo = &memo
	}
	if mimeType != "" {
		req.MimeType = &mimeType
	}

	result, err := s.files.Upload(ctx, req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", filename, err)
	}

	s.logger.Info("file seeded",
		"filename", result.Filename,
		"folder_id", result.FolderID,
		"version", result.Version,
		"operation", result.Operation,
	)
	return nil
}

// resolveFolder maps a fixture folder path to its ID; empty is the root
func resolveFolder(ids map[string]int64, path string) (*int64, error) {
	if path == "" {
		return nil, nil
	}
	id, ok := ids[path]
	if !ok {
		return nil, fmt.Errorf("fixture folder %q is not defined", path)
	}
	return &id, nil
}

func folderPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
