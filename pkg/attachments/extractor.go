// Package attachments finds GitLab upload references in markdown text,
// relocates the files to a draft release on the target repository, and
// rewrites the references to point at the uploaded assets.
package attachments

import "regexp"

// uploadPattern matches GitLab upload references. The secret is always a
// 32 character hex string; the filename runs until whitespace or a closing
// markdown parenthesis.
var uploadPattern = regexp.MustCompile(`/uploads/([a-f0-9]{32})/([^)\s]+)`)

// Reference is one attachment reference found in markdown text
type Reference struct {
	Secret   string
	Filename string
}

// ShortURL returns the relative upload path as it appears in markdown
func (r Reference) ShortURL() string {
	return "/uploads/" + r.Secret + "/" + r.Filename
}

// AssetName returns a collision-safe name for the uploaded asset. Different
// uploads of the same filename get different secrets, so a secret prefix
// keeps them apart.
func (r Reference) AssetName() string {
	return r.Secret[:8] + "_" + r.Filename
}

// Extract returns all upload references in the text, in order of appearance.
// A reference appearing multiple times is returned multiple times; callers
// that need uniqueness deduplicate themselves.
func Extract(text string) []Reference {
	matches := uploadPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	refs := make([]Reference, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, Reference{Secret: m[1], Filename: m[2]})
	}
	return refs
}
