// Package classifier detects Terms of Service and Privacy Policy links
// among a page's anchor elements.
//
// Classification is a pure function over anchor candidates: extraction walks
// the HTML once and collects candidates in document order, then matching
// picks the first candidate per keyword set. Running it twice on the same
// document yields identical results, which the watcher relies on when it
// re-runs classification on every page change.
package classifier
