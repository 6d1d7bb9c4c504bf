package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"media-ingest/internal/logging"

	"github.com/google/uuid"
)

// Limits for image uploads. Multiple images may share one request, so an
// aggregate ceiling applies on top of the per-file one.
const (
	MaxImageFiles     = 4
	MaxImageFileSize  = 300 * 1024
	MaxImageTotalSize = 1024 * 1024
)

// Limits for video uploads. One file per request, no aggregate ceiling.
const (
	MaxVideoFiles    = 1
	MaxVideoFileSize = 50 * 1024 * 1024
)

// StagedFile is an accepted upload written to scratch storage. The
// component that claims it owns it exclusively and removes it when done.
type StagedFile struct {
	Path      string
	FieldName string
	MimeType  string
	Size      int64
}

// Remove deletes the staged file from scratch storage.
func (f StagedFile) Remove() {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove staged file %s: %v", f.Path, err)
	}
}

// Limits describes the validation constraints for one upload purpose.
type Limits struct {
	Field        string
	MimePrefix   string
	MaxFiles     int
	MaxFileSize  int64
	MaxTotalSize int64
}

// ImageLimits returns the constraints for image uploads: field "image",
// up to 4 files, per-file and aggregate size ceilings.
func ImageLimits() Limits {
	return Limits{
		Field:        "image",
		MimePrefix:   "image/",
		MaxFiles:     MaxImageFiles,
		MaxFileSize:  MaxImageFileSize,
		MaxTotalSize: MaxImageTotalSize,
	}
}

// VideoLimits returns the constraints for video uploads: field "video",
// exactly one file.
func VideoLimits() Limits {
	return Limits{
		Field:       "video",
		MimePrefix:  "video/",
		MaxFiles:    MaxVideoFiles,
		MaxFileSize: MaxVideoFileSize,
	}
}

// Intake parses multipart upload requests and stages accepted files in a
// scratch directory.
type Intake struct {
	dir    string
	limits Limits
}

// NewIntake creates an Intake staging files under dir. The directory must
// already exist (startup.LoadConfig creates it).
func NewIntake(dir string, limits Limits) *Intake {
	return &Intake{dir: dir, limits: limits}
}

// Parse reads the request body and returns the accepted staged files.
// On any validation failure every file staged so far is removed and a
// *Error describing the first violation is returned; partial files are
// never left behind.
func (in *Intake) Parse(r *http.Request) ([]StagedFile, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, newError(ErrEmptyUpload, "request is not multipart: %v", err)
	}

	var (
		staged    []StagedFile
		totalSize int64
	)

	cleanup := func() {
		for _, f := range staged {
			f.Remove()
		}
	}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to read multipart body: %w", err)
		}

		// Plain form fields carry no filename and are not this
		// component's concern.
		if part.FileName() == "" {
			continue
		}

		if part.FormName() != in.limits.Field {
			cleanup()
			return nil, newError(ErrFieldNameMismatch,
				"file field must be %q, got %q", in.limits.Field, part.FormName())
		}

		mimeType := part.Header.Get("Content-Type")
		if !strings.HasPrefix(mimeType, in.limits.MimePrefix) {
			cleanup()
			return nil, newError(ErrUnsupportedMediaType,
				"content type %q does not match %s*", mimeType, in.limits.MimePrefix)
		}

		if len(staged) >= in.limits.MaxFiles {
			cleanup()
			return nil, newError(ErrTooManyFiles,
				"at most %d file(s) allowed per request", in.limits.MaxFiles)
		}

		file, err := in.stagePart(part, mimeType)
		if err != nil {
			cleanup()
			return nil, err
		}
		staged = append(staged, file)

		totalSize += file.Size
		if in.limits.MaxTotalSize > 0 && totalSize > in.limits.MaxTotalSize {
			cleanup()
			return nil, newError(ErrPayloadTooLarge,
				"total upload size exceeds %d bytes", in.limits.MaxTotalSize)
		}
	}

	if len(staged) == 0 {
		return nil, newError(ErrEmptyUpload, "no files in request")
	}

	logging.Debug("Staged %d file(s) under %s", len(staged), in.dir)
	return staged, nil
}

// stagePart copies one part to scratch storage under a fresh unique name,
// enforcing the per-file size ceiling while copying so an oversized body
// is never fully written to disk.
func (in *Intake) stagePart(part *multipart.Part, mimeType string) (StagedFile, error) {
	ext := strings.ToLower(filepath.Ext(part.FileName()))
	name := uuid.NewString() + ext
	path := filepath.Join(in.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return StagedFile{}, fmt.Errorf("failed to create staged file: %w", err)
	}

	// Read one byte past the ceiling to detect oversize without
	// trusting Content-Length.
	written, err := io.Copy(dst, io.LimitReader(part, in.limits.MaxFileSize+1))
	closeErr := dst.Close()

	if err != nil {
		removeFile(path)
		return StagedFile{}, fmt.Errorf("failed to write staged file: %w", err)
	}
	if closeErr != nil {
		removeFile(path)
		return StagedFile{}, fmt.Errorf("failed to close staged file: %w", closeErr)
	}
	if written > in.limits.MaxFileSize {
		removeFile(path)
		return StagedFile{}, newError(ErrPayloadTooLarge,
			"file exceeds %d bytes", in.limits.MaxFileSize)
	}

	return StagedFile{
		Path:      path,
		FieldName: in.limits.Field,
		MimeType:  mimeType,
		Size:      written,
	}, nil
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove partial staged file %s: %v", path, err)
	}
}
