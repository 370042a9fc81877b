package jats

import (
	"net/url"
	"strings"
)

// Index maps candidate spellings of dependent-file names to download
// URLs. Build one with BuildIndex and treat it as read-only afterwards;
// lookups go through Resolve.
type Index map[string]string

// BuildIndex registers every named file under the spellings a document
// may use to reference it: the name as given, its percent-encoded form,
// its last path segment, and the percent-encoded last segment, each
// additionally in lower case. Files with an empty name contribute no
// keys. When two files produce the same key, the later file wins.
func BuildIndex(files []File) Index {
	idx := make(Index)
	for _, f := range files {
		if f.Name == "" {
			continue
		}
		base := lastSegment(f.Name)
		for _, key := range []string{
			f.Name,
			url.PathEscape(f.Name),
			base,
			url.PathEscape(base),
		} {
			idx[key] = f.URL
			idx[strings.ToLower(key)] = f.URL
		}
	}
	return idx
}

// Resolve looks an href value up against the index. Candidates are
// tried in order: the value as read, its percent-decoded form, and the
// last path segment of each, with the exact spelling checked before the
// lower-cased one at every step. ok is false when nothing matches.
func (idx Index) Resolve(href string) (target string, ok bool) {
	candidates := make([]string, 0, 4)
	candidates = append(candidates, href)
	decoded, err := url.PathUnescape(href)
	if err == nil {
		candidates = append(candidates, decoded)
	}
	candidates = append(candidates, lastSegment(href))
	if err == nil {
		candidates = append(candidates, lastSegment(decoded))
	}

	for _, c := range candidates {
		if target, ok = idx[c]; ok {
			return target, true
		}
		if target, ok = idx[strings.ToLower(c)]; ok {
			return target, true
		}
	}
	return "", false
}

// lastSegment returns the part of name after the final '/', or name
// itself when it contains none.
func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}
