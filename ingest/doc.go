// Package ingest exposes the presence manager to the game server.
//
// HTTP (NewHandler), any method:
//
//	/heartbeat        200 "heartbeat ok"
//	/player/{count}   200 "update player ok", 400 for an invalid or missing count
//	anything else     404 "404 Not found"
//
// NATS (NewSubscriber), with an optional reply:
//
//	<prefix>.heartbeat        heartbeat
//	<prefix>.player           player count in the payload
//	<prefix>.player.<count>   player count in the subject
//
// Handlers return as soon as the write is recorded; they never wait for the
// presence sink.
package ingest
