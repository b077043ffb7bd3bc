/*
Package session serializes access to saved records.

A Manager wraps a ports.KVStore with a per-key mutex (reference counted so idle
keys do not leak) and, optionally, a ports.DistributedLocker so that several
engine replicas sharing one Redis do not interleave writes to the same save.
*/
package session
