package intent

import (
	"regexp"
	"strings"
)

var adminProductURLPattern = regexp.MustCompile(`^/admin/entries/products/(\d+)-(.+)$`)

// adminURLHint is what the deterministic pre-processing step extracts from
// a CMS admin entry-edit URL. It always wins over the model's domain
// choice, because the URL already tells us exactly which record the user
// is looking at.
type adminURLHint struct {
	entryID string
	name    string
}

func matchAdminProductURL(uri string) *adminURLHint {
	m := adminProductURLPattern.FindStringSubmatch(uri)
	if m == nil {
		return nil
	}
	return &adminURLHint{entryID: m[1], name: titleCaseSlug(m[2])}
}

// titleCaseSlug turns "wycheproof-caravan-park" into "Wycheproof Caravan
// Park".
func titleCaseSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
