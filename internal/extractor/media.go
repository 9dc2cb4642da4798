package extractor

import (
	"regexp"
	"strings"
)

// mediaRootPattern finds the first Data/Media/ or Data/Picture/ segment in
// either slash convention.
var mediaRootPattern = regexp.MustCompile(`(?i)Data[\\/](Media|Picture)[\\/].+$`)

// NormalizeMediaPath turns a platform-specific media path such as
// `C:\Brother's Keeper 7\Data\Media\a.jpg` into "Data/Media/a.jpg". Paths
// without a known root are only converted to forward slashes. Normalizing an
// already normalized path returns it unchanged.
func NormalizeMediaPath(raw string) string {
	if loc := mediaRootPattern.FindStringIndex(raw); loc != nil {
		raw = raw[loc[0]:loc[1]]
	}
	return strings.ReplaceAll(raw, `\`, "/")
}
