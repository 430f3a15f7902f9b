package search

import "strings"

// SearchType identifies the semantic facet a criterion searches against.
type SearchType string

const (
	SearchTypeKeyword SearchType = "keyword"
	SearchTypeTitle   SearchType = "title"
	SearchTypeContent SearchType = "content"
	SearchTypePath    SearchType = "path"
)

// SearchCriteria is an immutable typed query fragment. Construct one with
// the New*Criteria helpers; the zero value is not usable.
type SearchCriteria struct {
	searchType SearchType
	terms      []string
}

func newCriteria(searchType SearchType, terms []string) SearchCriteria {
	copied := make([]string, len(terms))
	copy(copied, terms)
	return SearchCriteria{searchType: searchType, terms: copied}
}

// NewKeywordCriteria builds a criterion matching extracted document keywords.
func NewKeywordCriteria(terms ...string) SearchCriteria {
	return newCriteria(SearchTypeKeyword, terms)
}

// NewTitleCriteria builds a criterion matching document titles.
func NewTitleCriteria(terms ...string) SearchCriteria {
	return newCriteria(SearchTypeTitle, terms)
}

// NewContentCriteria builds a free-text criterion over document content.
// Content criteria are the only ones that carry an embedding vector.
func NewContentCriteria(terms ...string) SearchCriteria {
	return newCriteria(SearchTypeContent, terms)
}

// NewPathCriteria builds a criterion matching hierarchical document paths.
func NewPathCriteria(terms ...string) SearchCriteria {
	return newCriteria(SearchTypePath, terms)
}

// Type returns the search-type tag of the criterion.
func (c SearchCriteria) Type() SearchType {
	return c.searchType
}

// Terms returns a copy of the ordered query terms.
func (c SearchCriteria) Terms() []string {
	copied := make([]string, len(c.terms))
	copy(copied, c.terms)
	return copied
}

// Query joins the ordered terms into the text query sent to the backend.
func (c SearchCriteria) Query() string {
	return strings.Join(c.terms, " ")
}
