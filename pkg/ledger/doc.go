// Package ledger reconstructs per-user terminal sessions from login and
// logout events.
//
// Invariants:
// - Events are kept in ascending timestamp order; equal timestamps keep
//   insertion order.
// - A login for user U on terminal T pairs with the first later logout for
//   the same U and T. Without one the session is open.
// - Sessions are derived on every query; nothing is cached.
//
// Usage:
//
//	l := ledger.New()
//	l.Insert(ledger.MustEvent(1, ledger.Login, "alice", time.UnixMilli(100)))
//	l.Insert(ledger.MustEvent(1, ledger.Logout, "alice", time.UnixMilli(500)))
//	s, _ := l.FirstSession("alice")
//	_ = s.DurationMillis() // 400
//
// A Ledger is not safe for concurrent use; callers that share one across
// goroutines must guard it themselves.
package ledger
