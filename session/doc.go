// Package session keeps per-session conversation history in memory.
//
// Each session is an ordered list of turns alternating between the
// human question and the assistant answer. Exchanges are appended
// atomically so concurrent readers never see a question without its
// answer. History is volatile: it lives for the lifetime of the
// process and is lost on restart.
package session
