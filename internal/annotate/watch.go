package annotate

import "golang.org/x/net/html"

// Mutation is one structural-change record: the nodes a producer inserted
// into the tree. Removals need no record; nothing in this package holds
// references into the tree between scans.
type Mutation struct {
	Added []*html.Node
}

// Watcher reacts to batches of tree insertions by scanning only the newly
// added subtrees, keeping incremental work proportional to the change, not
// to the document. The annotator's marker exclusion is what stops a scan's
// own insertions from being re-processed if they are reported back.
type Watcher struct {
	a *Annotator
}

// NewWatcher wraps an annotator for incremental use.
func NewWatcher(a *Annotator) *Watcher {
	return &Watcher{a: a}
}

// Apply processes one callback batch. Each record may carry any number of
// added nodes; element roots are scanned as subtrees, bare text nodes are
// highlighted directly when eligible. Returns the number of markers
// produced across the batch.
func (w *Watcher) Apply(records []Mutation) int {
	total := 0
	for _, rec := range records {
		for _, n := range rec.Added {
			if n == nil {
				continue
			}
			total += w.a.Scan(n)
		}
	}
	return total
}
