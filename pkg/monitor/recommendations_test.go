package monitor

import (
	"reflect"
	"testing"

	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
)

func TestRecommendationsFollowFindingOrder(t *testing.T) {
	findings := []models.AnomalyFinding{
		{MetricType: models.MetricSpO2},
		{MetricType: models.MetricHeartRate},
	}

	recs := recommendationsFor(findings)
	expected := append(append([]string{},
		recommendationTemplates[models.MetricSpO2]...),
		recommendationTemplates[models.MetricHeartRate]...)

	if !reflect.DeepEqual(recs, expected) {
		t.Fatalf("expected %v, got %v", expected, recs)
	}
}

func TestRecommendationsDeduplicate(t *testing.T) {
	findings := []models.AnomalyFinding{
		{MetricType: models.MetricHeartRate},
		{MetricType: models.MetricHeartRate},
	}

	recs := recommendationsFor(findings)
	if len(recs) != len(recommendationTemplates[models.MetricHeartRate]) {
		t.Fatalf("expected duplicates removed, got %v", recs)
	}
}

func TestRecommendationsUnknownMetric(t *testing.T) {
	recs := recommendationsFor([]models.AnomalyFinding{{MetricType: models.MetricSteps}})
	if len(recs) != 0 {
		t.Fatalf("expected no recommendations for an untemplated metric, got %v", recs)
	}
}
