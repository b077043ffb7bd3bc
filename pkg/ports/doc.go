/*
Package ports defines the driven ports (interfaces) for the Acheron engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to persist sessions in memory, on disk or in Redis without changes.

# Key Interfaces

  - KVStore: Durable key-value storage for the saved session record.
  - DistributedLocker: Provides distributed locking when several replicas share a store.
*/
package ports
