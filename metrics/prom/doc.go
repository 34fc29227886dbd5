// Package prom exports index metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	idx, _ := nrlsh.New[float32](4, 8, 16, 128, 1024,
//	    nrlsh.WithMetricsCollector(prom.NewCollector(reg, "nrlsh")))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom
