// Package websocket serves interactive selection sessions over /ws.
//
// Every connection owns one selector.Session over the shared table cache, so
// viewers never see each other's selections. Clients send JSON commands
// (load, select_group, set_range, set_columns, set_pair, series, scatter,
// state) and receive one reply per command, tagged with the command id in
// reply_to. Failures are answered with an error message carrying a stable
// code; only DATA_UNAVAILABLE is marked fatal.
package websocket
