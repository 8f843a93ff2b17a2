package attachments

import (
	"strings"

	"github.com/go-logr/logr"

	"github.com/flaksit/gitlab-to-github-migrator/pkg/source"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/target"
)

// Handler relocates attachments from the source project to the target
// repository. One Handler is shared by all issue bodies and comments of a
// migration, so a file referenced from several places is downloaded and
// uploaded exactly once and every reference gets the same target URL.
type Handler struct {
	source source.System
	target target.System
	logger logr.Logger

	// cache maps a reference's short URL to its rewritten target URL
	cache map[string]string

	uploaded   int
	referenced int
}

// NewHandler creates a handler with an empty cache
func NewHandler(src source.System, tgt target.System, logger logr.Logger) *Handler {
	return &Handler{
		source: src,
		target: tgt,
		logger: logger,
		cache:  make(map[string]string),
	}
}

// Process rewrites every attachment reference in the text to point at an
// asset on the target's attachments release, uploading the file first when
// this is its first appearance. A failed download leaves the original
// reference in place and the migration continues; a failed upload aborts,
// since by then the file exists and losing it would be silent data loss.
func (h *Handler) Process(text string) (string, error) {
	refs := Extract(text)
	if len(refs) == 0 {
		return text, nil
	}

	result := text
	seen := make(map[string]bool)

	for _, ref := range refs {
		shortURL := ref.ShortURL()
		h.referenced++

		if seen[shortURL] {
			continue
		}
		seen[shortURL] = true

		targetURL, cached := h.cache[shortURL]
		if !cached {
			var skip bool
			var err error
			targetURL, skip, err = h.relocate(ref)
			if err != nil {
				if source.IsDownloadError(err) {
					h.logger.Info("attachment download failed, keeping original reference",
						"file", ref.Filename, "error", err.Error())
					continue
				}
				return "", err
			}
			if skip {
				continue
			}
			h.cache[shortURL] = targetURL
		}

		result = strings.ReplaceAll(result, shortURL, targetURL)
	}

	return result, nil
}

// relocate downloads one attachment and uploads it as a release asset. An
// empty download is reported as skip=true so the caller keeps the original
// reference without caching anything.
func (h *Handler) relocate(ref Reference) (url string, skip bool, err error) {
	content, contentType, err := h.source.DownloadAttachment(ref.Secret, ref.Filename)
	if err != nil {
		return "", false, err
	}

	if len(content) == 0 {
		h.logger.Info("source returned empty content for attachment, keeping original reference",
			"file", ref.Filename, "contentType", contentType)
		return "", true, nil
	}

	url, err = h.target.UploadAttachmentAsset(ref.AssetName(), content, contentType)
	if err != nil {
		return "", false, &AttachmentError{
			Type:    "relocation_error",
			Message: "failed to upload attachment to target",
			Err:     err,
			Context: ref.Filename,
		}
	}

	h.uploaded++
	h.logger.V(1).Info("relocated attachment", "file", ref.Filename, "url", url)
	return url, false, nil
}

// Uploaded returns the number of files uploaded so far
func (h *Handler) Uploaded() int {
	return h.uploaded
}

// Referenced returns the number of references encountered so far, counting
// repeats
func (h *Handler) Referenced() int {
	return h.referenced
}
