// Package ingest normalizes raw ENTLN CSV exports into model.Pulse records.
//
// # Data Source
//
// Pulses originate from Earth Networks Total Lightning Network (ENTLN)
// CSV exports. Analysts download overlapping time ranges repeatedly, so
// the same physical strike routinely appears in more than one file; the
// store's dedup key collapses those to a single record.
//
// # ENTLN Data Conventions
//
// Columns (vendor schema v1, names matched case-insensitively with the
// aliases listed in [SchemaV1]):
//
//	timestamp    ISO 8601 UTC instant, second or finer resolution.
//	latitude     Degrees, -90..90. Out-of-range rows are rejected.
//	longitude    Degrees, -180..180. Out-of-range rows are rejected.
//	peakcurrent  Signed peak current in AMPERES. Stored as kA (/1000).
//	             The sign carries physical meaning and is preserved;
//	             polarity derives from it (>= 0 positive, < 0 negative).
//	icheight     Intracloud discharge height in METERS. Stored as km
//	             (/1000), and only retained for intracloud pulses.
//	type         Stroke class: 0 = cloud-to-ground, 1 = intracloud.
//	             Missing or unrecognized values default to
//	             cloud-to-ground with no IC height.
//
// Only timestamp, latitude, and longitude are required; a row missing
// any of them (or failing coercion) is rejected with a RowError, and
// ingestion of the remaining rows continues.
//
// New vendor formats are additive configuration: define another Schema
// with its own alias table rather than changing the mapping code.
package ingest
