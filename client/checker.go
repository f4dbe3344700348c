package client

// DocumentBuilder re-creates one document's expected stored state for the
// document checker (spec §6.5): callers populate it the same way they
// would populate a Transaction, and the checker compares it against what is
// actually stored.
type DocumentBuilder struct {
	Attributes map[string]string
	Metadata   map[string]float64
}

// CheckLog receives one discrepancy line per mismatch found.
type CheckLog interface {
	Printf(format string, args ...any)
}

// CheckDocument verifies that every field recorded in want matches what is
// actually stored for docno, logging each discrepancy to log and returning
// the number found (spec §6.5).
func (s *Storage) CheckDocument(docno uint32, want DocumentBuilder, log CheckLog) (int, error) {
	mismatches := 0
	for name, wantValue := range want.Attributes {
		got, err := s.DocumentStatistics(docno, "attribute", name)
		if err != nil {
			return mismatches, err
		}
		if got != wantValue {
			log.Printf("docno %d: attribute %q: want %q, got %q", docno, name, wantValue, got)
			mismatches++
		}
	}
	for name, wantValue := range want.Metadata {
		got, err := s.DocumentStatistics(docno, "metadata", name)
		if err != nil {
			return mismatches, err
		}
		wantStr := formatFloat(wantValue)
		if got != wantStr {
			log.Printf("docno %d: metadata %q: want %s, got %s", docno, name, wantStr, got)
			mismatches++
		}
	}
	return mismatches, nil
}

// printfLog adapts fmt.Printf-style sinks (e.g. a *log.Logger or a plain
// function) to CheckLog.
type printfLog func(format string, args ...any)

func (f printfLog) Printf(format string, args ...any) { f(format, args...) }

// NewPrintfLog wraps a Printf-shaped function as a CheckLog, e.g.
// client.NewPrintfLog(log.Printf) or client.NewPrintfLog(t.Logf) in tests.
func NewPrintfLog(fn func(format string, args ...any)) CheckLog { return printfLog(fn) }
