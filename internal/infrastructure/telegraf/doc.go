// Package telegraf delivers InfluxDB line protocol records to a telegraf
// socket_listener input over UDP or TCP.
//
// # Usage
//
//	client, err := telegraf.Connect(cfg.Telegraf)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	client.SetOnError(func(err error) { log.Error("telegraf write", "error", err) })
//
//	client.WriteRecord("homie,device=therm1 value=21.5 1700000000000000500\n")
//
// # Delivery model
//
// UDP sends one datagram per record immediately. TCP batches records and
// flushes on size threshold or timer; a failed flush drops the batch,
// reports the error and re-dials lazily. The pipeline is never blocked on
// the collector; drop-on-error is the back-pressure policy here.
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
package telegraf
