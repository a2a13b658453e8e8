package monitor

import "github.com/atharvamohekar/guardian-ai/pkg/common/models"

var recommendationTemplates = map[models.MetricType][]string{
	models.MetricHeartRate: {
		"Monitor heart rate closely for next 30 minutes",
		"Avoid strenuous activities",
		"Consider contacting your doctor if persists",
	},
	models.MetricSpO2: {
		"Check oxygen saturation levels regularly",
		"Ensure proper ventilation",
		"Seek medical attention if levels drop further",
	},
	models.MetricStressScore: {
		"Practice deep breathing exercises",
		"Take a short break from current activity",
		"Consider stress management techniques",
	},
	models.MetricSleepHours: {
		"Prioritize getting adequate sleep tonight",
		"Maintain consistent sleep schedule",
		"Avoid caffeine late in the day",
	},
}

// recommendationsFor concatenates the per-metric templates for every finding
// present, then removes duplicates preserving first-occurrence order.
func recommendationsFor(findings []models.AnomalyFinding) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, finding := range findings {
		for _, rec := range recommendationTemplates[finding.MetricType] {
			if _, ok := seen[rec]; ok {
				continue
			}
			seen[rec] = struct{}{}
			out = append(out, rec)
		}
	}
	return out
}
