// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package unnest expands archives whose entries may be compressed archives themselves,
// nested arbitrarily deep, and renders previews of the files it finds.
//
// [Expand] decompresses an input with a [Codec], classifies every entry with a [Classifier]
// and recursively expands the entries classified as nested archives. The result is a tree of
// [Node] values that [Flatten] turns into path-qualified [FlatFile] records, which [Export]
// writes into a zip archive. A nested archive that cannot be decompressed is kept as a file,
// the expansion continues.
//
// A [Previewer] renders files by their [ContentKind]: JSON is pretty printed, text is returned
// verbatim, images are returned with their mime type and everything else as hex dump.
//
// Configuration is done using the [Config], which bounds nesting depth, number of entries,
// decompressed bytes and input size, and sets the logger, the telemetry hook and the event
// hook. [TelemetryData] is captured during every expansion, an [Event] is emitted for every
// degraded fallback decision.
package unnest
