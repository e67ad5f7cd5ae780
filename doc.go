// Package presence tracks whether a game server is alive and mirrors that
// status, with its player count, onto a slow presence display.
//
// The game server sends heartbeats ("I'm alive") and player counts. The
// Manager keeps one authoritative record, reports the server offline when
// heartbeats stop for longer than the configured timeout, and applies
// changes to a PresenceSink (a bot activity, a KV document, a log line)
// without ever blocking the sender and without flooding the sink.
//
// # Quick Start
//
//	import (
//	    "github.com/arloliu/presence"
//	    "github.com/arloliu/presence/ingest"
//	    "github.com/arloliu/presence/sink"
//	)
//
//	cfg := presence.DefaultConfig()
//	mgr, err := presence.NewManager(&cfg, sink.NewLog(logger, sink.Formatter{MaxPlayers: 48}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := mgr.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer mgr.Stop(context.Background())
//
//	http.ListenAndServe("127.0.0.1:30180", ingest.NewHandler(mgr))
//
// # Architecture
//
// Three cooperating parts share one mutex-guarded record:
//
//	ingest ──write──▶ record ◀──timeout── heartbeat monitor (1s ticks)
//	                    │
//	                  wake (capacity 1)
//	                    ▼
//	               reconciler ──▶ PresenceSink
//
// Writers mark the record dirty and post a wake-up. The reconciler takes a
// snapshot and clears the dirty flag in one step, then calls the sink with
// no lock held. Writes arriving during a slow sink call collapse into a
// single follow-up call carrying the latest values.
//
// # State Machine
//
//	Unknown ──heartbeat──▶ Online ──timeout──▶ Offline ──heartbeat──▶ Online
//
// Player counts are applied only while Online; a count received in any
// other state is kept and applied with the next Online transition.
package presence
