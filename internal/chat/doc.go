// Package chat implements the multi-participant conversation engine: an
// in-memory conversation store plus the orchestrator that routes speakers,
// windows transcript context and generates in-character turns through a
// persona-bound generative session per participant. Conversations live only
// between explicit Start and End calls and do not survive process restarts.
package chat
