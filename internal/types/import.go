package types

// ImportPosition is one position of a bulk import, with the interviews to add to it.
type ImportPosition struct {
	CreatePositionRequest
	Interviews []CreateInterviewRequest `json:"interviews,omitempty"`
}

// ImportDocument is the bulk import file format.
type ImportDocument struct {
	Positions []ImportPosition `json:"positions"`
}

// ImportResult counts what a bulk import created.
type ImportResult struct {
	Positions  int `json:"positions"`
	Interviews int `json:"interviews"`
}
