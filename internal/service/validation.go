package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"filevault/internal/config"
	"filevault/internal/domain"
	"filevault/internal/domain/repositories"
	"filevault/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var noSlashes = regexp.MustCompile(`^[^/\\]+$`)

// ResourceValidator checks that the folder a file operation is scoped to exists
type ResourceValidator struct {
	folderRepo repositories.FolderRepository
}

// NewResourceValidator creates a new resource validator
func NewResourceValidator(folderRepo repositories.FolderRepository) *ResourceValidator {
	return &ResourceValidator{folderRepo: folderRepo}
}

// ValidateFolder ensures folderID exists. A nil folderID is the root and
// always valid. Returns domain.ErrFolderNotFound otherwise.
func (v *ResourceValidator) ValidateFolder(ctx context.Context, folderID *int64) error {
	if folderID == nil {
		return nil
	}

	_, err := v.folderRepo.GetByID(ctx, *folderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("folder %d: %w", *folderID, domain.ErrFolderNotFound)
		}
		return storageErr("get folder", err)
	}
	return nil
}

// validateCreateFolderRequest validates a folder creation request
func validateCreateFolderRequest(req *services.CreateFolderRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.By(notBlank),
			validation.RuneLength(1, config.MaxFolderNameLength),
			validation.Match(noSlashes).Error("folder name cannot contain slashes"),
		),
		validation.Field(&req.ParentID, validation.NilOrNotEmpty, validation.Min(int64(1))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// validateUploadRequest validates a file upload request
func validateUploadRequest(req *services.UploadRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Filename, filenameRules()...),
		validation.Field(&req.Memo, validation.NilOrNotEmpty.Error("memo cannot be empty"), validation.RuneLength(0, config.MaxMemoLength)),
		validation.Field(&req.FolderID, validation.NilOrNotEmpty, validation.Min(int64(1))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// validateDeleteRequest validates a file delete request
func validateDeleteRequest(req *services.DeleteRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Filename, filenameRules()...),
		validation.Field(&req.Memo, validation.NilOrNotEmpty.Error("memo cannot be empty"), validation.RuneLength(0, config.MaxMemoLength)),
		validation.Field(&req.FolderID, validation.NilOrNotEmpty, validation.Min(int64(1))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// validateFilename validates a bare filename used for lookups
func validateFilename(filename string) error {
	if err := validation.Validate(filename, filenameRules()...); err != nil {
		return fmt.Errorf("%w: filename: %v", domain.ErrValidation, err)
	}
	return nil
}

func filenameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.By(notBlank),
		validation.RuneLength(1, config.MaxFilenameLength),
		validation.Match(noSlashes).Error("filename cannot contain slashes"),
		validation.NotIn(".", ".."),
	}
}

func notBlank(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
}
