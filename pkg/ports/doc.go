/*
Package ports defines the driven ports (interfaces) of the symptom checker.

These interfaces decouple the traversal engine from external implementations,
allowing it to work with various graph sources, session stores and booking flows.

# Key Interfaces

  - GraphLoader: loads the decision graph (embedded catalog, file, Loam directory, memory).
  - StateStore: persists and loads session State.
  - DistributedLocker: coordinates concurrent session access across replicas.
  - BookingHandoff: delivers the recommendation to the appointment booking flow.
  - IdentityProvider: looks up the display name used in the entry greeting.
*/
package ports
