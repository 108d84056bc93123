package metrics

import dto "github.com/prometheus/client_model/go"

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func labelValue(metric *dto.Metric, name string) string {
	for _, label := range metric.GetLabel() {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}

// counterWithLabels returns -1 when no series carries all of want.
func counterWithLabels(mf *dto.MetricFamily, want map[string]string) float64 {
	if mf == nil {
		return -1
	}
	for _, metric := range mf.GetMetric() {
		matched := true
		for k, v := range want {
			if labelValue(metric, k) != v {
				matched = false
				break
			}
		}
		if matched {
			return metric.GetCounter().GetValue()
		}
	}
	return -1
}
