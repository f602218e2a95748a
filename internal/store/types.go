package store

// TableCount is the number of rows held by one user table.
type TableCount struct {
	Name string
	Rows int64
}

// Column describes one column reported by PRAGMA table_xinfo.
type Column struct {
	Name   string
	Type   string
	Hidden bool // generated or virtual-table hidden column
}
