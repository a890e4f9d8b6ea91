package ids

import (
	"strconv"

	"github.com/google/uuid"
)

// Prefixes used for generated identifiers.
const (
	User       = "user"
	Project    = "proj"
	Phase      = "phase"
	Tag        = "tag"
	Task       = "task"
	Comment    = "comment"
	Attachment = "att"
	Log        = "log"
)

// Generator returns a fresh identifier for the given prefix.
type Generator func(prefix string) string

// New returns prefix-<uuid>.
func New(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Sequence returns a Generator producing prefix-1, prefix-2, ... per prefix.
// It is deterministic, which makes it handy in tests.
func Sequence() Generator {
	next := map[string]int{}

	return func(prefix string) string {
		next[prefix]++

		return prefix + "-" + strconv.Itoa(next[prefix])
	}
}
