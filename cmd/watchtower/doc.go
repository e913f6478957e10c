// Command watchtower loads production-tracking data for a project (from a
// static export or the tracker API), assembles the shot/asset graph, and
// prints or exports it.
package main
