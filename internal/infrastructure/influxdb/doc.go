// Package influxdb provides the direct InfluxDB v2 push method for
// homiegraf, selected with push.method "influx". Encoded line protocol
// records are handed to the non-blocking write API, which batches and
// sends them asynchronously.
//
// This path exists for deployments without a telegraf hop; the telegraf
// socket is the default. Both expose the same WriteRecord surface so the
// exporter does not care which one it is wired to.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Async write failures are
// delivered via the SetOnError callback.
package influxdb
