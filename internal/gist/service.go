package gist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/bennypowers/lighthouse-ci-action/internal/githubcli"
)

const (
	archiveFileNameTemplateConstant = "%s-%s.json"
	archiveListFailureMessage       = "Unable to list existing archive gists; creating fresh archives"
	archiveReadFailureMessage       = "Unable to read raw report file"
	archiveDecodeFailureMessage     = "Unable to decode raw report file"
	archiveUploadFailureMessage     = "Unable to archive raw report file"
	filePathFieldNameConstant       = "file_path"
	gistNameFieldNameConstant       = "gist_name"
)

var nonAlphanumericExpression = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// ArchiveReference ties an audited URL to its archived gist revision.
// A reference with an empty ID means archiving was skipped or failed for
// that URL; notifications then omit the report link.
type ArchiveReference struct {
	URL     string
	ID      string
	Version string
}

// ContentStore is the gist surface the service needs from githubcli.Client.
type ContentStore interface {
	ListGists(executionContext context.Context) ([]githubcli.Gist, error)
	CreateGist(executionContext context.Context, files map[string]string) (githubcli.GistReference, error)
	UpdateGist(executionContext context.Context, gistIdentifier string, files map[string]string) (githubcli.GistReference, error)
}

// Service archives raw Lighthouse reports for one repository.
type Service struct {
	store      ContentStore
	repository string
	logger     *zap.Logger
}

// NewService constructs an archive service. A nil store disables archiving;
// ArchiveAll then returns empty references so notifications still render.
func NewService(store ContentStore, repository string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, repository: repository, logger: logger}
}

// ArchiveName returns the deterministic gist file name for a repository and
// audited URL. Runs of non-alphanumeric characters collapse to single dashes
// so the same URL always maps to the same archive.
func ArchiveName(repository string, url string) string {
	repositorySlug := nonAlphanumericExpression.ReplaceAllString(repository, "-")
	urlSlug := nonAlphanumericExpression.ReplaceAllString(url, "-")
	return fmt.Sprintf(archiveFileNameTemplateConstant, repositorySlug, urlSlug)
}

// ArchiveAll uploads each raw report file and returns one reference per file,
// in input order. Failures for individual files degrade to empty references
// rather than failing the run.
func (service *Service) ArchiveAll(executionContext context.Context, filePaths []string) []ArchiveReference {
	if service.store == nil {
		// No archive credential: keep a single placeholder so callers can
		// still pair sections with references positionally.
		return []ArchiveReference{{}}
	}

	existingArchives := service.loadArchiveIndex(executionContext, filePaths)

	references := make([]ArchiveReference, len(filePaths))
	var waitGroup sync.WaitGroup
	for fileIndex, filePath := range filePaths {
		waitGroup.Add(1)
		go func(fileIndex int, filePath string) {
			defer waitGroup.Done()
			references[fileIndex] = service.archiveFile(executionContext, filePath, existingArchives)
		}(fileIndex, filePath)
	}
	waitGroup.Wait()

	return references
}

func (service *Service) loadArchiveIndex(executionContext context.Context, filePaths []string) map[string]string {
	archiveIdentifiersByName := map[string]string{}
	if len(filePaths) == 0 {
		return archiveIdentifiersByName
	}

	existingGists, listError := service.store.ListGists(executionContext)
	if listError != nil {
		service.logger.Warn(archiveListFailureMessage, zap.Error(listError))
		return archiveIdentifiersByName
	}

	for _, existingGist := range existingGists {
		for _, fileName := range existingGist.FileNames {
			archiveIdentifiersByName[fileName] = existingGist.ID
		}
	}

	return archiveIdentifiersByName
}

func (service *Service) archiveFile(executionContext context.Context, filePath string, existingArchives map[string]string) ArchiveReference {
	fileContents, readError := os.ReadFile(filePath)
	if readError != nil {
		service.logger.Warn(archiveReadFailureMessage, zap.String(filePathFieldNameConstant, filePath), zap.Error(readError))
		return ArchiveReference{}
	}

	var report struct {
		RequestedURL string `json:"requestedUrl"`
	}
	if decodingError := json.Unmarshal(fileContents, &report); decodingError != nil {
		service.logger.Warn(archiveDecodeFailureMessage, zap.String(filePathFieldNameConstant, filePath), zap.Error(decodingError))
		return ArchiveReference{}
	}

	archiveName := ArchiveName(service.repository, report.RequestedURL)
	archiveFiles := map[string]string{archiveName: string(fileContents)}

	var reference githubcli.GistReference
	var uploadError error
	if existingIdentifier, archived := existingArchives[archiveName]; archived {
		reference, uploadError = service.store.UpdateGist(executionContext, existingIdentifier, archiveFiles)
	} else {
		reference, uploadError = service.store.CreateGist(executionContext, archiveFiles)
	}
	if uploadError != nil {
		service.logger.Warn(archiveUploadFailureMessage, zap.String(gistNameFieldNameConstant, archiveName), zap.Error(uploadError))
		return ArchiveReference{URL: report.RequestedURL}
	}

	return ArchiveReference{
		URL:     report.RequestedURL,
		ID:      reference.ID,
		Version: reference.Version,
	}
}

// ReferenceForURL returns the archive reference recorded for the URL, or an
// empty reference when the URL was never archived.
func ReferenceForURL(references []ArchiveReference, url string) ArchiveReference {
	for _, reference := range references {
		if strings.EqualFold(reference.URL, url) {
			return reference
		}
	}
	return ArchiveReference{}
}
