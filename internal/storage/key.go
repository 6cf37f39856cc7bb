package storage

import "fmt"

// Object key purposes. Enrollment images are keyed by the user they belong
// to; recognition probes are not tied to a known user yet, so they get an
// opaque hint instead.
const (
	PurposeRegister  = "register"
	PurposeRecognize = "recognize"
)

// ObjectKey builds the blob key for a stored image:
// {purpose}/{subjectHint}/{timestampMillis}.jpg. The timestamp component
// keeps keys from ever being reused under normal clock behavior.
func ObjectKey(purpose, subjectHint string, tsMillis int64) string {
	return fmt.Sprintf("%s/%s/%d.jpg", purpose, subjectHint, tsMillis)
}
