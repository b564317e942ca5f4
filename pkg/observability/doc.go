/*
Package observability provides tools for monitoring the sections engine.

It turns engine lifecycle hooks into structured log lines and Prometheus
metrics, and combines several hook sets into one.
*/
package observability
