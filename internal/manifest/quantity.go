package manifest

import "k8s.io/apimachinery/pkg/api/resource"

const bytesPerMi = 1024 * 1024

// CPUQuantity renders a milli-cpu magnitude as a manifest quantity
// (300 -> "300m").
func CPUQuantity(milli int64) string {
	return resource.NewMilliQuantity(milli, resource.DecimalSI).String()
}

// MemoryQuantity renders a Mi magnitude as a manifest quantity
// (400 -> "400Mi").
func MemoryQuantity(mi int64) string {
	return resource.NewQuantity(mi*bytesPerMi, resource.BinarySI).String()
}
