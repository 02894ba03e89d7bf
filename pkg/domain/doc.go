/*
Package domain contains the core domain models of the LUMINEX symptom checker.

It defines the static decision graph (nodes, options, results, branches), the
session snapshot that moves through the entry selector, the demographics gate,
the traversal and the result presenter, and the typed hand-off passed to the
appointment booking flow. This package is kept pure and free of I/O, following
Hexagonal Architecture principles.

# Key Entities

  - Graph: the immutable, language-agnostic decision graph plus its localization table.
  - Node / Option: a question and its ordered answers. An option leads either to another node or to a Result.
  - Result: a terminal recommendation (title, description, department, branch id, urgency).
  - Demographics: the gender and age range collected by the gate, plus the chosen symptom.
  - State: the runtime snapshot of a session (phase, language, current key, history).
  - ActionRequest: a structural representation of what the host should render.
  - Handoff: the typed message delivered to the booking flow.
*/
package domain
