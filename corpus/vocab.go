package corpus

import "github.com/nlpcore/fastalign/ttable"

// NullSurface is the surface form reserved for the synthetic NULL source
// token, matching the original tool's own convention so that parameter
// dumps read the same way.
const NullSurface = "<eps>"

// Vocabulary interns strings to dense WordIDs and resolves them back,
// reserving a distinguished id for NULL. It is the process-wide interning
// collaborator the EM driver, reader and emitter all share, rather than
// any one of them owning word identity itself.
type Vocabulary interface {
	Intern(s string) ttable.WordID
	String(id ttable.WordID) string
	NullID() ttable.WordID
}

// Vocab is the default Vocabulary: a bidirectional slice/map pair, grown
// as new tokens are interned.
type Vocab struct {
	idToStr []string
	strToID map[string]ttable.WordID
}

// NewVocab returns a Vocab with only the NULL token interned.
func NewVocab() *Vocab {
	return &Vocab{
		idToStr: []string{NullSurface},
		strToID: map[string]ttable.WordID{NullSurface: ttable.NullID},
	}
}

// NullID returns the reserved WordID for the NULL token.
func (this *Vocab) NullID() ttable.WordID { return ttable.NullID }

// Intern returns s's WordID, allocating a new one if s hasn't been seen.
func (this *Vocab) Intern(s string) ttable.WordID {
	if id, ok := this.strToID[s]; ok {
		return id
	}
	id := ttable.WordID(len(this.idToStr))
	this.idToStr = append(this.idToStr, s)
	this.strToID[s] = id
	return id
}

// String returns the surface form id was interned from. id must have been
// returned by Intern (or be NullID).
func (this *Vocab) String(id ttable.WordID) string {
	return this.idToStr[id]
}
