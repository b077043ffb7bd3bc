/*
Package domain contains the core domain models of the Acheron engine.

It defines the scenario graph (Scenario, Node, Choice), the mutable traversal record
(SessionState) and the events emitted while a session progresses. This package is kept
pure and free of I/O or persistence concerns, following Hexagonal Architecture principles.

# Key Entities

  - Scenario: One complete branching narrative graph (a "mission").
  - Node: A decision point with narrative text and zero or more outgoing choices.
  - Choice: A labeled edge from one node to another.
  - SessionState: The runtime snapshot of a traversal (current node, history, status).
  - LifecycleHooks: Callbacks for observability (transitions, outcomes, hints).
*/
package domain
