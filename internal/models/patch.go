package models

// SessionPatch is a shallow merge applied to one session. Nil fields are
// left untouched. Patching an unknown session id is a no-op.
type SessionPatch struct {
	Title *string `json:"title"`
	Spot  *Spot   `json:"spot"`
	Notes *string `json:"notes"`
}

// HandTagPatch edits a hand tag's label or description. Time is not
// patchable; if it ever becomes so, the hand list must be re-sorted.
type HandTagPatch struct {
	Label       *string `json:"label"`
	Description *string `json:"description"`
}

type CreateSessionRequest struct {
	Title    string    `json:"title"`
	Spot     Spot      `json:"spot"`
	FileName string    `json:"file_name"`
	Media    *MediaRef `json:"media"`
}

type RelinkRequest struct {
	Media *MediaRef `json:"media"`
}

type AddHandTagRequest struct {
	Time float64 `json:"time"`
}
