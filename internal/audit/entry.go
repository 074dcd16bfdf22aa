package audit

// Entry is one line in the hash-chained JSONL audit log: a single applied
// policy mutation. All fields are scalars to guarantee deterministic
// json.Marshal field order for reproducible hashing.
type Entry struct {
	Timestamp string `json:"ts"`
	Op        string `json:"op"`
	Source    string `json:"source"`
	Package   string `json:"pkg,omitempty"`
	Target    string `json:"target,omitempty"`
	PrevHash  string `json:"prev_hash"`
}
