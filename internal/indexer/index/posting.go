package index

// Posting records how often a term occurs in one document. Frequency is
// always at least 1.
type Posting struct {
	DocID     string `json:"doc_id"`
	Frequency int    `json:"frequency"`
}

// PostingList is a set of postings for one term, sorted by DocID.
type PostingList []Posting

// TermEntry pairs a term with its postings and IDF weight.
type TermEntry struct {
	Term     string      `json:"term"`
	IDF      float64     `json:"idf"`
	Postings PostingList `json:"postings"`
}

// DocStats describes one indexed document.
type DocStats struct {
	DocID  string `json:"doc_id"`
	DocLen int    `json:"doc_len"`
}
