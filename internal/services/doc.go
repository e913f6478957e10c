// Package services defines shared utilities consumed by the aggregation
// pipeline and its resource fetchers.
//
// Key responsibilities:
//   - Context helpers that stamp project, episode, session, and stage
//     identifiers plus correlation ids for logging.
//   - Structured error markers (transport, malformed data, lookup miss,
//     configuration, superseded) and the Wrap helper that tags failures so
//     stage reports can classify them.
//
// Use these helpers when wiring new stages or fetchers so failure handling
// and observability stay uniform across the pipeline.
package services
