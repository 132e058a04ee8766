package domain

// ArtifactKind identifies one member of a document's artifact family.
type ArtifactKind string

// Artifact kinds in relocation order.
const (
	ArtifactOriginal  ArtifactKind = "original"
	ArtifactThumbnail ArtifactKind = "thumbnail"
	ArtifactText      ArtifactKind = "text"
)

// Artifact is a stored file belonging to a document.
type Artifact struct {
	Kind ArtifactKind
	Path string
}

// Optional returns true for derived artifacts that may legitimately be
// missing (not every document has a preview or extracted text).
func (a Artifact) Optional() bool {
	return a.Kind != ArtifactOriginal
}

// OriginalPath returns the storage path of a document's original file.
func OriginalPath(id, format string) string {
	return "originals/" + id + "." + format
}

// ThumbnailPath returns the storage path of a document's thumbnail.
func ThumbnailPath(id string) string {
	return "thumbnails/" + id + ".png"
}

// TextPath returns the storage path of a document's extracted text.
func TextPath(id string) string {
	return "text/" + id + ".txt"
}

// ArtifactFamily returns the original, thumbnail and text artifacts of a
// document, in the order they are relocated.
func ArtifactFamily(id, format string) []Artifact {
	return []Artifact{
		{Kind: ArtifactOriginal, Path: OriginalPath(id, format)},
		{Kind: ArtifactThumbnail, Path: ThumbnailPath(id)},
		{Kind: ArtifactText, Path: TextPath(id)},
	}
}
