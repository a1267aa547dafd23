package domain

// ImageStore keeps survey cover images. Paths are relative to the public root.
type ImageStore interface {
	Save(payload string) (string, error)
	Delete(relativePath string) error
	URL(relativePath string) string
}
