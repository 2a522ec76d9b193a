package routing

import (
	"encoding/json"
	"math"
)

// Action parameter keys understood by the dispatcher.
const (
	ParamSequenceID         = "sequence_id"
	ParamPriority           = "priority"
	ParamMessage            = "message"
	ParamTriggerType        = "trigger_type"
	ParamOfferType          = "offer_type"
	ParamRecommendationType = "recommendation_type"
	ParamContentCount       = "content_count"
	ParamBookingType        = "booking_type"
	ParamConsultantType     = "consultant_type"
)

func stringParam(params map[string]any, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// intParam accepts the numeric forms a parameter can take after a JSON round trip.
func intParam(params map[string]any, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fallback
		}
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}
