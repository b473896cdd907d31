package corpus

// Progress describes how far a scan has come. It is reported after each
// container is finished.
type Progress struct {
	Domain    Domain
	Container string
	Done      int
	Total     int
}

// ProgressFunc receives scan progress. It is called from the scanning goroutine
// and must not block for long.
type ProgressFunc func(Progress)
