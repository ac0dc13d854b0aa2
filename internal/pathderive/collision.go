package pathderive

import (
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var trailingExtension = regexp.MustCompile(`\.\w+$`)

// SplitExtension separates a file name into stem and extension. A compound
// ".<anything>.gz" suffix is kept whole starting at the first dot; a bare
// ".gz" comes next, then a trailing word-character extension.
func SplitExtension(name string) (stem, ext string, ok bool) {
	if strings.HasSuffix(name, ".gz") {
		if i := strings.Index(name, "."); i >= 0 && i <= len(name)-5 {
			return name[:i], name[i:], true
		}
		return name[:len(name)-3], ".gz", true
	}
	if loc := trailingExtension.FindStringIndex(name); loc != nil {
		return name[:loc[0]], name[loc[0]:], true
	}
	return "", "", false
}

// WithCollisionSuffix returns key with a fresh random hex token inserted
// before the extension: "dir/stem_<hex>-ext". Names without an extension
// become "dir/name_<hex>".
func WithCollisionSuffix(key string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	dir, name := path.Split(key)
	var renamed string
	if stem, ext, ok := SplitExtension(name); ok {
		renamed = stem + "_" + token + "-" + ext
	} else {
		renamed = name + "_" + token
	}
	return dir + renamed
}
