/*
Package session coordinates concurrent access to symptom check sessions.

Each session is owned by one logical user, but HTTP retries, SSE clients and
several replicas may still touch the same state at once. The Manager serializes
those accesses with a per-session mutex and, optionally, a distributed lock.
*/
package session
