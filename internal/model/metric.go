package model

// Metric is one extracted field of the lease abstract: the model-reported
// value plus provenance and any correction override layered on top.
type Metric struct {
	Name           string   `json:"name"`
	ExtractedValue Scalar   `json:"extractedValue"`
	Override       *Scalar  `json:"override,omitempty"`
	SourceDocument string   `json:"sourceDocument,omitempty"`
	SourceQuote    string   `json:"sourceQuote,omitempty"`
	Notes          []string `json:"notes,omitempty"`
}

// Effective returns the override when one is set (and non-null), otherwise
// the extracted value. Consumers other than the extractor read this, never
// the raw fields.
func (m *Metric) Effective() Scalar {
	if m.Override != nil && !m.Override.IsNull() {
		return *m.Override
	}
	return m.ExtractedValue
}

// SetOverride records a correction override on the metric.
func (m *Metric) SetOverride(v Scalar) {
	m.Override = &v
}

// AddNote appends an audit note. Notes are append-only.
func (m *Metric) AddNote(note string) {
	m.Notes = append(m.Notes, note)
}

// EffectiveFloat returns the numeric view of the effective value.
func (m *Metric) EffectiveFloat() (float64, bool) {
	return m.Effective().AsFloat()
}

// MetricSet is an ordered collection of metrics with name lookup.
type MetricSet struct {
	records []*Metric
	byName  map[string]*Metric
}

// NewMetricSet builds a MetricSet preserving the given order.
func NewMetricSet(records []*Metric) *MetricSet {
	set := &MetricSet{
		records: records,
		byName:  make(map[string]*Metric, len(records)),
	}
	for _, r := range records {
		set.byName[r.Name] = r
	}
	return set
}

// Get returns the metric with the given name, or nil.
func (ms *MetricSet) Get(name string) *Metric {
	if ms == nil {
		return nil
	}
	return ms.byName[name]
}

// Records returns the metrics in schema order.
func (ms *MetricSet) Records() []*Metric {
	if ms == nil {
		return nil
	}
	return ms.records
}

// Len returns the number of metrics in the set.
func (ms *MetricSet) Len() int {
	if ms == nil {
		return 0
	}
	return len(ms.records)
}
