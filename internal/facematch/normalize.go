package facematch

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/fras/internal/database"
)

// ErrInvalidLabel is returned for labels that are blank or not valid UTF-8
var ErrInvalidLabel = errors.New("invalid label")

// ValidateLabel rejects labels that cannot name a person. Labels are stored
// and compared byte for byte, so a valid label is never rewritten.
func ValidateLabel(label string) error {
	if !utf8.ValidString(label) || strings.TrimSpace(label) == "" {
		return ErrInvalidLabel
	}
	return nil
}

// SortLabels orders label counts alphabetically using Unicode collation
// (accents and case sort next to their base letters). Composed and decomposed
// spellings sort together; equal keys keep store order.
func SortLabels(labels []database.LabelCount) {
	c := collate.New(language.Und)
	sort.SliceStable(labels, func(i, j int) bool {
		return c.CompareString(norm.NFC.String(labels[i].Label), norm.NFC.String(labels[j].Label)) < 0
	})
}
