package entities

import (
	"context"

	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/core/resource"
	"github.com/kmulambia/qgen-client/internal/core/store"
	"github.com/kmulambia/qgen-client/internal/transport"
)

const FileEndpoint = "/files"

// File is the stored-object record: the binary lives on the backend, the
// record carries its name, type and descriptive metadata.
type File struct {
	resource.Base
	OriginalFilename string `json:"original_filename"`
	StoredFilename   string `json:"stored_filename,omitempty"`
	FullPath         string `json:"full_path,omitempty"`
	ContentType      string `json:"content_type"`
	Size             int64  `json:"size"`

	FileMetadata map[string]any `json:"file_metadata,omitempty"`
	Category     string         `json:"category,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Description  string         `json:"description,omitempty"`
}

var FileDefaults = resource.Params{
	Page:     1,
	PageSize: 10,
	SortBy:   "original_filename",
	SortDir:  resource.SortAsc,
}

func NewFileClient(http *transport.Client) *resource.Client[File] {
	return resource.NewClient[File](http, FileEndpoint)
}

// FileStore extends the generic store with the metadata patch endpoint.
// Byte transfer (upload, download) happens outside this store.
type FileStore struct {
	*store.Store[File]
}

func NewFileStore(log *zap.Logger) *FileStore {
	return &FileStore{Store: store.New[File]("file", FileDefaults, log)}
}

// UpdateMetadata patches the descriptive fields of a file without touching
// the stored object.
func (s *FileStore) UpdateMetadata(ctx context.Context, id string, metadata map[string]any) (*File, error) {
	var file File
	err := s.Exec(func(client *resource.Client[File]) error {
		return client.PatchJSON(ctx, "/"+id+"/metadata", metadata, &file)
	})
	if err != nil {
		return nil, err
	}
	return &file, nil
}
