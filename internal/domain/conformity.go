package domain

// Conformity is a typed association between two entities, e.g. a deal and
// the customers attached to it. Associations are undirected.
type Conformity struct {
	ID         string
	MainType   string
	MainTypeID string
	RelType    string
	RelTypeID  string
}

// ConformityQuery asks for entities related to an anchor entity.
type ConformityQuery struct {
	MainType   string
	MainTypeID string
	RelType    string
	IsRelated  bool
	IsSaved    bool
}

// Present reports whether the query names an anchor entity.
func (q ConformityQuery) Present() bool {
	return q.MainType != "" && q.MainTypeID != ""
}
