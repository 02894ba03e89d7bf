/*
Package observability turns engine lifecycle events into Prometheus metrics
and structured audit logs. Both are exposed as domain.LifecycleHooks and can
be merged with any other hooks a host registers.
*/
package observability
