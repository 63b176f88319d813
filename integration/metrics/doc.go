// Package metrics records mediator dispatches as Prometheus metrics.
//
//	collector, err := metrics.NewCollector(prometheus.DefaultRegisterer)
//	if err != nil {
//		return err
//	}
//	if err := metrics.Install(builder, collector); err != nil {
//		return err
//	}
//	_ = metrics.RegisterHubGauge(prometheus.DefaultRegisterer, hub, "")
//
// Exported metrics (default namespace "mediator"):
//
//	mediator_messages_total{message,kind,status}
//	mediator_message_duration_seconds{message,kind}
//	mediator_messages_in_flight{kind}
//	mediator_stream_items_total{message}
//	mediator_subscriptions
//
// Install the behavior first so its timings include the other behaviors.
package metrics
