package bridge

import metrics "github.com/bft-go/bridge/pkg/api"

var busMessagesOpts = metrics.CounterOpts{
	Namespace:    "consensus",
	Subsystem:    "bridge",
	Name:         "bus_messages",
	Help:         "Count of bus messages processed, by routing key.",
	LabelNames:   []string{"key"},
	StatsdFormat: "%{#fqname}.%{key}",
}

var assembledBlocksOpts = metrics.CounterOpts{
	Namespace:    "consensus",
	Subsystem:    "bridge",
	Name:         "assembled_blocks",
	Help:         "Count of blocks assembled for the actuator.",
	LabelNames:   []string{},
	StatsdFormat: "%{#fqname}",
}

var pendingGetBlockOpts = metrics.GaugeOpts{
	Namespace:    "consensus",
	Subsystem:    "bridge",
	Name:         "pending_get_block",
	Help:         "Number of get-block requests waiting for data.",
	LabelNames:   []string{},
	StatsdFormat: "%{#fqname}",
}

var pendingCheckTxOpts = metrics.GaugeOpts{
	Namespace:    "consensus",
	Subsystem:    "bridge",
	Name:         "pending_check_tx",
	Help:         "Number of check-transaction requests waiting for a verdict.",
	LabelNames:   []string{},
	StatsdFormat: "%{#fqname}",
}

// Metrics encapsulates the bridge metrics.
type Metrics struct {
	BusMessages     metrics.Counter
	AssembledBlocks metrics.Counter
	PendingGetBlock metrics.Gauge
	PendingCheckTx  metrics.Gauge
}

// NewMetrics creates the bridge metrics from the given provider.
func NewMetrics(p *metrics.CustomerProvider) *Metrics {
	return &Metrics{
		BusMessages:     p.NewCounter(busMessagesOpts),
		AssembledBlocks: p.NewCounter(assembledBlocksOpts),
		PendingGetBlock: p.NewGauge(pendingGetBlockOpts),
		PendingCheckTx:  p.NewGauge(pendingCheckTxOpts),
	}
}
