package organizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/inboxpilot/docsort/interfaces"
	"github.com/inboxpilot/docsort/internal/enum"
	"github.com/inboxpilot/docsort/internal/logger"
	"github.com/inboxpilot/docsort/internal/tracing"
)

type organizerService struct {
	folders map[enum.DocumentType]string
	log     logger.Logger
}

// NewOrganizerService builds an organizer over the destination tree. The
// tree must contain an Others entry; unmapped types fall back to it.
func NewOrganizerService(folders map[enum.DocumentType]string, log logger.Logger) interfaces.Organizer {
	return &organizerService{
		folders: folders,
		log:     log,
	}
}

func (s *organizerService) Resolve(docType enum.DocumentType) string {
	if folder, ok := s.folders[docType]; ok {
		return folder
	}
	return s.folders[enum.DocumentOthers]
}

// Save writes raw attachment bytes into folder, resolving filename
// collisions with a numeric suffix.
func (s *organizerService) Save(ctx context.Context, content []byte, filename string, folder string) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "OrganizerService.Save")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("filename", filename)

	if err := os.MkdirAll(folder, 0o755); err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrapf(err, "failed to create folder %s", folder)
	}

	path, err := uniquePath(folder, filename)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrapf(err, "failed to save attachment %s", filename)
	}

	s.log.Infof("Saved attachment to: %s", path)
	return path, nil
}

// Place renames a saved file to its synthesized name inside the destination
// folder for docType. The rename is atomic within one filesystem; on
// failure the source file is left in place.
func (s *organizerService) Place(ctx context.Context, srcPath string, docType enum.DocumentType, newName string) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "OrganizerService.Place")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("document_type", docType.String())

	targetFolder := s.Resolve(docType)
	if err := os.MkdirAll(targetFolder, 0o755); err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrapf(err, "failed to create folder %s", targetFolder)
	}

	newPath, err := uniquePath(targetFolder, newName)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}
	if err := os.Rename(srcPath, newPath); err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrapf(err, "failed to organize document %s", srcPath)
	}

	s.log.Infof("Organized document: %s -> %s", filepath.Base(srcPath), newPath)
	return newPath, nil
}

// uniquePath inserts a numeric counter before the extension until the path
// no longer collides with an existing file. Only a collision extends the
// loop; any other stat failure (bad name, permissions) is returned so the
// caller can fail the attachment instead of probing forever.
func uniquePath(folder, name string) (string, error) {
	path := filepath.Join(folder, name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for counter := 1; ; counter++ {
		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			return path, nil
		}
		if err != nil {
			return "", errors.Wrapf(err, "failed to stat %s", path)
		}
		path = filepath.Join(folder, fmt.Sprintf("%s_%d%s", stem, counter, ext))
	}
}
